// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package uri

import (
	"encoding/hex"
	"strconv"
)

// NormalizeHostname lowercases hostname and removes all trailing dots, in
// place. It returns the shortened hostname.
func NormalizeHostname(hostname []byte) []byte {
	lowerASCII(hostname)
	n := len(hostname)
	for n > 0 && hostname[n-1] == '.' {
		n--
	}
	return hostname[:n]
}

// NormalizeComponent rewrites the percent escapes of a generic component in
// place and returns the shortened component. Escapes of RFC 3986 unreserved
// characters are decoded. Other escapes, malformed ones included, are kept
// with their hex digits uppercased.
func NormalizeComponent(s []byte) []byte {
	w := 0
	for r := 0; r < len(s); {
		if s[r] != '%' {
			s[w] = s[r]
			w++
			r++
			continue
		}

		if r+2 >= len(s) {
			// Too short for an escape: keep what is there.
			s[w] = '%'
			w++
			for r++; r < len(s); r++ {
				s[w] = upperASCII(s[r])
				w++
			}
			break
		}

		var c [1]byte
		if _, err := hex.Decode(c[:], s[r+1:r+3]); err == nil && isUnreserved(c[0]) {
			s[w] = c[0]
			w++
			r += 3
			continue
		}

		s[w], s[w+1], s[w+2] = '%', upperASCII(s[r+1]), upperASCII(s[r+2])
		w += 3
		r += 3
	}
	return s[:w]
}

// isUnreserved reports whether c is an RFC 3986 unreserved character.
func isUnreserved(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	case c == '-', c == '.', c == '_', c == '~':
		return true
	}
	return false
}

func isLWS(c byte) bool {
	return c == ' ' || c == '\t'
}

// parsePositiveInteger parses a decimal number surrounded by optional spaces
// and tabs. It returns -1 when data holds anything else.
func parsePositiveInteger(data []byte) int {
	start, end := 0, len(data)
	for start < end && isLWS(data[start]) {
		start++
	}
	for end > start && isLWS(data[end-1]) {
		end--
	}

	digits := data[start:end]
	if len(digits) == 0 {
		return -1
	}
	for _, c := range digits {
		if c < '0' || c > '9' {
			return -1
		}
	}

	n, err := strconv.ParseInt(string(digits), 10, 32)
	if err != nil {
		return -1
	}
	return int(n)
}

func lowerASCII(s []byte) {
	for i, c := range s {
		if 'A' <= c && c <= 'Z' {
			s[i] = c + 'a' - 'A'
		}
	}
}

func upperASCII(c byte) byte {
	if 'a' <= c && c <= 'z' {
		return c - ('a' - 'A')
	}
	return c
}
