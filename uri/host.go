// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package uri

import (
	"bytes"

	"golang.org/x/net/http/httpguts"

	"github.com/stacklok/urinorm/anomaly"
)

const maxPort = 65535

// ReplaceHostname sets the hostname of u from the value of a Host header.
//
// The header is split at its first colon. The port, if any, is recorded in
// u.PortNumber only when it is in the range 1-65535 and equal to localPort,
// the port the connection was accepted on. A localPort of 0 means the local
// port is unknown and any valid port is accepted. Problems with the header are
// recorded on tr.
func ReplaceHostname(u *ParsedURI, hostHeader []byte, localPort int, tr *anomaly.Tracker) {
	if !httpguts.ValidHostHeader(string(hostHeader)) {
		tr.Raise(anomaly.HostInvalid)
	}

	host, port, hasPort := bytes.Cut(hostHeader, []byte{':'})
	u.Hostname = NormalizeHostname(bytes.Clone(host))
	if !hasPort {
		return
	}

	n := parsePositiveInteger(port)
	switch {
	case n < 1 || n > maxPort:
		tr.Raise(anomaly.HostPortInvalid)
	case localPort != 0 && n != localPort:
		tr.Raise(anomaly.HostPortMismatch)
	default:
		u.PortNumber = n
	}
}
