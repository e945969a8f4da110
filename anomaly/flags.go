// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package anomaly

import (
	"log/slog"
	"math/bits"
	"strings"
)

// Flags is a set of anomalies observed on one transaction.
type Flags uint32

const (
	// PathEncodedNUL is raised when a path escape decodes to a NUL byte.
	PathEncodedNUL Flags = 1 << iota
	// PathEncodedSeparator is raised when a path escape decodes to a path separator.
	PathEncodedSeparator
	// PathInvalidEncoding is raised for a % that does not start a valid escape.
	PathInvalidEncoding
	// PathOverlongU is raised for a %u escape whose high byte is zero.
	PathOverlongU
	// PathUTF8Valid is raised when the path contained well-formed multi-byte UTF-8
	// and no invalid sequence.
	PathUTF8Valid
	// PathUTF8Invalid is raised when an invalid UTF-8 sequence was seen in the path.
	PathUTF8Invalid
	// PathUTF8Overlong is raised when a codepoint was encoded with more bytes than needed.
	PathUTF8Overlong
	// PathUTF8FullwidthEvasion is raised when a fullwidth form was used in the path.
	PathUTF8FullwidthEvasion
	// HostInvalid is raised when a Host header value is not a valid host.
	HostInvalid
	// HostPortInvalid is raised when a Host header port is unparseable or out of range.
	HostPortInvalid
	// HostPortMismatch is raised when a Host header port differs from the connection's local port.
	HostPortMismatch
)

var flagNames = [...]string{
	"path_encoded_nul",
	"path_encoded_separator",
	"path_invalid_encoding",
	"path_overlong_u",
	"path_utf8_valid",
	"path_utf8_invalid",
	"path_utf8_overlong",
	"path_utf8_fullwidth_evasion",
	"host_invalid",
	"host_port_invalid",
	"host_port_mismatch",
}

// All lists every defined flag in bit order.
var All = []Flags{
	PathEncodedNUL,
	PathEncodedSeparator,
	PathInvalidEncoding,
	PathOverlongU,
	PathUTF8Valid,
	PathUTF8Invalid,
	PathUTF8Overlong,
	PathUTF8FullwidthEvasion,
	HostInvalid,
	HostPortInvalid,
	HostPortMismatch,
}

// Has reports whether every flag in mask is set.
func (f Flags) Has(mask Flags) bool {
	return f&mask == mask
}

// Any reports whether at least one flag in mask is set.
func (f Flags) Any(mask Flags) bool {
	return f&mask != 0
}

// Names returns the names of the set flags in bit order.
func (f Flags) Names() []string {
	names := make([]string, 0, bits.OnesCount32(uint32(f)))
	for i, name := range flagNames {
		if f&(1<<i) != 0 {
			names = append(names, name)
		}
	}
	return names
}

// String joins the flag names with "|". An empty set is "none".
func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	return strings.Join(f.Names(), "|")
}

// LogValue implements slog.LogValuer.
func (f Flags) LogValue() slog.Value {
	return slog.AnyValue(f.Names())
}

// FlagByName returns the flag with the given name.
func FlagByName(name string) (Flags, bool) {
	for i, n := range flagNames {
		if n == name {
			return 1 << i, true
		}
	}
	return 0, false
}
