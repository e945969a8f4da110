// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"fmt"
	"strconv"
)

// ErrUnknownPolicy is returned for a policy value the normalizer does not know.
var ErrUnknownPolicy = errors.New("unknown policy")

// NULPolicy selects how a NUL byte in the path is handled.
type NULPolicy int

const (
	// NULLeave keeps the byte.
	NULLeave NULPolicy = iota
	// NULTerminate truncates the path at the NUL.
	NULTerminate
	// NULStatus400 keeps the byte and expects a 400 response.
	NULStatus400
	// NULStatus404 keeps the byte and expects a 404 response.
	NULStatus404
)

var nulPolicyNames = []string{"leave", "terminate", "status_400", "status_404"}

// SeparatorPolicy selects how an encoded path separator is handled.
type SeparatorPolicy int

const (
	// SeparatorDecode decodes the escape into a separator.
	SeparatorDecode SeparatorPolicy = iota
	// SeparatorLeave keeps the escape as it is.
	SeparatorLeave
	// SeparatorStatus404 keeps the escape and expects a 404 response.
	SeparatorStatus404
)

var separatorPolicyNames = []string{"decode", "leave", "status_404"}

// InvalidEncodingPolicy selects how a % that does not start a valid escape is handled.
type InvalidEncodingPolicy int

const (
	// InvalidPreservePercent keeps the % in the output.
	InvalidPreservePercent InvalidEncodingPolicy = iota
	// InvalidRemovePercent drops the %.
	InvalidRemovePercent
	// InvalidDecode converts the following characters as if they were hex digits.
	InvalidDecode
	// InvalidStatus400 keeps the % and expects a 400 response.
	InvalidStatus400
)

var invalidEncodingPolicyNames = []string{"preserve_percent", "remove_percent", "decode_invalid", "status_400"}

// StatusPolicy selects which response status, if any, an anomaly predicts.
type StatusPolicy int

const (
	// StatusLeave predicts nothing.
	StatusLeave StatusPolicy = iota
	// Status400 predicts a 400 response.
	Status400
	// Status404 predicts a 404 response.
	Status404
)

var statusPolicyNames = []string{"leave", "status_400", "status_404"}

func policyString(names []string, v int) string {
	if v < 0 || v >= len(names) {
		return strconv.Itoa(v)
	}
	return names[v]
}

func parsePolicy(kind string, names []string, text []byte) (int, error) {
	for i, n := range names {
		if n == string(text) {
			return i, nil
		}
	}
	return 0, fmt.Errorf("%w: %s %q", ErrUnknownPolicy, kind, text)
}

func policyValid(names []string, v int) bool {
	return v >= 0 && v < len(names)
}

// String returns the policy name.
func (p NULPolicy) String() string { return policyString(nulPolicyNames, int(p)) }

// Valid reports whether p is a known policy.
func (p NULPolicy) Valid() bool { return policyValid(nulPolicyNames, int(p)) }

// MarshalText implements encoding.TextMarshaler.
func (p NULPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: NUL policy %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *NULPolicy) UnmarshalText(text []byte) error {
	v, err := parsePolicy("NUL policy", nulPolicyNames, text)
	if err != nil {
		return err
	}
	*p = NULPolicy(v)
	return nil
}

// String returns the policy name.
func (p SeparatorPolicy) String() string { return policyString(separatorPolicyNames, int(p)) }

// Valid reports whether p is a known policy.
func (p SeparatorPolicy) Valid() bool { return policyValid(separatorPolicyNames, int(p)) }

// MarshalText implements encoding.TextMarshaler.
func (p SeparatorPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: separator policy %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *SeparatorPolicy) UnmarshalText(text []byte) error {
	v, err := parsePolicy("separator policy", separatorPolicyNames, text)
	if err != nil {
		return err
	}
	*p = SeparatorPolicy(v)
	return nil
}

// String returns the policy name.
func (p InvalidEncodingPolicy) String() string {
	return policyString(invalidEncodingPolicyNames, int(p))
}

// Valid reports whether p is a known policy.
func (p InvalidEncodingPolicy) Valid() bool { return policyValid(invalidEncodingPolicyNames, int(p)) }

// MarshalText implements encoding.TextMarshaler.
func (p InvalidEncodingPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: invalid-encoding policy %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *InvalidEncodingPolicy) UnmarshalText(text []byte) error {
	v, err := parsePolicy("invalid-encoding policy", invalidEncodingPolicyNames, text)
	if err != nil {
		return err
	}
	*p = InvalidEncodingPolicy(v)
	return nil
}

// String returns the policy name.
func (p StatusPolicy) String() string { return policyString(statusPolicyNames, int(p)) }

// Valid reports whether p is a known policy.
func (p StatusPolicy) Valid() bool { return policyValid(statusPolicyNames, int(p)) }

// MarshalText implements encoding.TextMarshaler.
func (p StatusPolicy) MarshalText() ([]byte, error) {
	if !p.Valid() {
		return nil, fmt.Errorf("%w: status policy %d", ErrUnknownPolicy, int(p))
	}
	return []byte(p.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *StatusPolicy) UnmarshalText(text []byte) error {
	v, err := parsePolicy("status policy", statusPolicyNames, text)
	if err != nil {
		return err
	}
	*p = StatusPolicy(v)
	return nil
}

// Char is a single byte written as a one-character string or as 0xNN.
type Char byte

// MarshalText implements encoding.TextMarshaler.
func (c Char) MarshalText() ([]byte, error) {
	if c > 0x20 && c < 0x7F {
		return []byte{byte(c)}, nil
	}
	return fmt.Appendf(nil, "0x%02X", byte(c)), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (c *Char) UnmarshalText(text []byte) error {
	if len(text) == 1 {
		*c = Char(text[0])
		return nil
	}
	if len(text) == 4 && text[0] == '0' && (text[1] == 'x' || text[1] == 'X') {
		v, err := strconv.ParseUint(string(text[2:]), 16, 8)
		if err == nil {
			*c = Char(v)
			return nil
		}
	}
	return fmt.Errorf("%w: character must be a single byte or 0xNN, got %q", ErrInvalidConfig, text)
}
