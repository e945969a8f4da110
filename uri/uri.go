// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package uri

import (
	"bytes"
	"encoding/json"
	"strings"
	"unicode/utf8"
)

// ParsedURI is a request-target split into its components. A nil component
// was not present; an empty, non-nil component was present but empty.
type ParsedURI struct {
	Scheme   []byte
	Username []byte
	Password []byte
	Hostname []byte
	// Port is the port as it appeared, before any parsing.
	Port []byte
	// PortNumber is the parsed port: 0 when no port is known and -1 when
	// the port could not be parsed.
	PortNumber int
	Path       []byte
	Query      []byte
	Fragment   []byte
}

// Decompose splits raw into its components. The components are copies; raw
// is not retained. Nothing is decoded and malformed input is never an error.
func Decompose(raw []byte) *ParsedURI {
	u := &ParsedURI{}
	n := len(raw)
	if n == 0 {
		return u
	}

	pos := 0

	// Anything that does not start with a path starts with a scheme. Without
	// a colon the whole input is treated as a path.
	if raw[0] != '/' {
		if i := bytes.IndexByte(raw, ':'); i >= 0 {
			u.Scheme = bytes.Clone(raw[:i])
			pos = i + 1
		}
	}

	// Exactly two slashes introduce an authority.
	if pos+2 < n && raw[pos] == '/' && raw[pos+1] == '/' && raw[pos+2] != '/' {
		start := pos + 2
		end := start
		for end < n && raw[end] != '?' && raw[end] != '/' && raw[end] != '#' {
			end++
		}
		u.setAuthority(raw[start:end])
		pos = end
	}

	end := pos
	for end < n && raw[end] != '?' && raw[end] != '#' {
		end++
	}
	u.Path = bytes.Clone(raw[pos:end])
	pos = end

	if pos < n && raw[pos] == '?' {
		end = pos + 1
		for end < n && raw[end] != '#' {
			end++
		}
		u.Query = bytes.Clone(raw[pos+1 : end])
		pos = end
	}

	if pos < n && raw[pos] == '#' {
		u.Fragment = bytes.Clone(raw[pos+1:])
	}

	return u
}

func (u *ParsedURI) setAuthority(authority []byte) {
	hostport := authority
	if i := bytes.LastIndexByte(authority, '@'); i >= 0 {
		credentials := authority[:i]
		hostport = authority[i+1:]

		user, password, found := bytes.Cut(credentials, []byte{':'})
		u.Username = bytes.Clone(user)
		if found {
			u.Password = bytes.Clone(password)
		}
	}

	host, port, found := bytes.Cut(hostport, []byte{':'})
	u.Hostname = bytes.Clone(host)
	if found {
		u.Port = bytes.Clone(port)
	}
}

// Clone returns a deep copy of u.
func (u *ParsedURI) Clone() *ParsedURI {
	return &ParsedURI{
		Scheme:     bytes.Clone(u.Scheme),
		Username:   bytes.Clone(u.Username),
		Password:   bytes.Clone(u.Password),
		Hostname:   bytes.Clone(u.Hostname),
		Port:       bytes.Clone(u.Port),
		PortNumber: u.PortNumber,
		Path:       bytes.Clone(u.Path),
		Query:      bytes.Clone(u.Query),
		Fragment:   bytes.Clone(u.Fragment),
	}
}

// String reassembles the components. Components are written as they are,
// without escaping.
func (u *ParsedURI) String() string {
	var b bytes.Buffer
	if u.Scheme != nil {
		b.Write(u.Scheme)
		b.WriteByte(':')
	}
	if u.Hostname != nil {
		b.WriteString("//")
		if u.Username != nil {
			b.Write(u.Username)
			if u.Password != nil {
				b.WriteByte(':')
				b.Write(u.Password)
			}
			b.WriteByte('@')
		}
		b.Write(u.Hostname)
		if u.Port != nil {
			b.WriteByte(':')
			b.Write(u.Port)
		}
	}
	b.Write(u.Path)
	if u.Query != nil {
		b.WriteByte('?')
		b.Write(u.Query)
	}
	if u.Fragment != nil {
		b.WriteByte('#')
		b.Write(u.Fragment)
	}
	return b.String()
}

type jsonURI struct {
	Scheme     *string `json:"scheme,omitempty"`
	Username   *string `json:"username,omitempty"`
	Password   *string `json:"password,omitempty"`
	Hostname   *string `json:"hostname,omitempty"`
	Port       *string `json:"port,omitempty"`
	PortNumber int     `json:"port_number,omitempty"`
	Path       *string `json:"path,omitempty"`
	Query      *string `json:"query,omitempty"`
	Fragment   *string `json:"fragment,omitempty"`
	// Base64 holds the exact bytes of every component that is not valid UTF-8.
	Base64 map[string][]byte `json:"base64,omitempty"`
}

// MarshalJSON encodes components as strings and omits absent ones.
//
// A component that is not valid UTF-8 is written with its invalid bytes
// percent-escaped as %XX, and its exact bytes are added, base64-encoded,
// under "base64" keyed by component name.
func (u *ParsedURI) MarshalJSON() ([]byte, error) {
	j := jsonURI{PortNumber: u.PortNumber}
	for _, c := range []struct {
		name string
		src  []byte
		dst  **string
	}{
		{"scheme", u.Scheme, &j.Scheme},
		{"username", u.Username, &j.Username},
		{"password", u.Password, &j.Password},
		{"hostname", u.Hostname, &j.Hostname},
		{"port", u.Port, &j.Port},
		{"path", u.Path, &j.Path},
		{"query", u.Query, &j.Query},
		{"fragment", u.Fragment, &j.Fragment},
	} {
		if c.src == nil {
			continue
		}
		s := EscapeInvalidUTF8(c.src)
		*c.dst = &s
		if !utf8.Valid(c.src) {
			if j.Base64 == nil {
				j.Base64 = make(map[string][]byte)
			}
			j.Base64[c.name] = c.src
		}
	}
	return json.Marshal(j)
}

// EscapeInvalidUTF8 returns b as a string with every byte that is not part
// of a valid UTF-8 sequence written as %XX.
func EscapeInvalidUTF8(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	const hexDigits = "0123456789ABCDEF"
	var sb strings.Builder
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteByte('%')
			sb.WriteByte(hexDigits[b[0]>>4])
			sb.WriteByte(hexDigits[b[0]&0x0F])
		} else {
			sb.Write(b[:size])
		}
		b = b[size:]
	}
	return sb.String()
}
