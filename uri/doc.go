// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package uri decomposes and normalizes HTTP request-targets.

A request-target is handled in two steps. [Decompose] splits the bytes received
on the wire into a raw [ParsedURI] without decoding anything. [Normalize] then
produces a second, independent [ParsedURI] holding canonical copies of each
component. The raw value is never modified, so callers can always compare what
appeared on the wire with what a web server will act on.

# Normalization

Each component is normalized according to its role:

  - the scheme is lowercased
  - the hostname has unreserved escapes decoded, is lowercased and loses any
    trailing dots
  - the port is parsed as a decimal number, surrounding spaces and tabs allowed
  - the path is decoded, UTF-8 converted and dot-segment normalized by
    package pathnorm under the policies of a [config.Config]
  - the username, password, query and fragment have unreserved escapes
    decoded and the hex digits of the remaining escapes uppercased

Anomalies seen while normalizing are recorded on an [anomaly.Tracker].

# Normalizer

A [Normalizer] binds a validated configuration to a logger and an optional
[Recorder], and runs the whole pipeline for one request:

	n, err := uri.NewNormalizer(cfg, uri.WithLogger(logger))
	if err != nil {
		return err
	}

	res, err := n.Inspect(uri.Request{
		Target:    []byte(r.RequestURI),
		Host:      []byte(r.Host),
		LocalPort: 8080,
	})

A Normalizer is safe for concurrent use as long as its configuration is not
modified.
*/
package uri
