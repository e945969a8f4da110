// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathnorm

import "bytes"

// RemoveDotSegments removes "." and ".." segments from path in place, as in
// RFC 3986 section 5.2.4, and returns the rewritten prefix of path.
func RemoveDotSegments(path []byte) []byte {
	b := buffer{data: path}
	n := len(path)
	// pending is a byte taken from the input but not yet written. A removed
	// "/." or "/.." prefix leaves a pending '/'.
	pending := -1

	for b.more() || pending >= 0 {
		if pending < 0 {
			pending = int(b.at(0))
			b.r++
		}
		rest := path[b.r:]

		switch byte(pending) {
		case '.':
			switch {
			case bytes.HasPrefix(rest, []byte("./")), bytes.HasPrefix(rest, []byte("/")):
				// "../" or "./" prefix
				b.r += bytes.IndexByte(rest, '/') + 1
				pending = -1
				continue
			case len(rest) == 0, len(rest) == 1 && rest[0] == '.':
				// "." or ".." is all that is left
				b.r = n
				pending = -1
				continue
			}
		case '/':
			switch {
			case bytes.HasPrefix(rest, []byte("./")):
				b.r += 2
				continue
			case bytes.Equal(rest, []byte(".")):
				b.r++
				continue
			case bytes.HasPrefix(rest, []byte("../")):
				b.r += 3
				b.dropSegment()
				continue
			case bytes.Equal(rest, []byte("..")):
				b.r += 2
				b.dropSegment()
				continue
			}
		}

		// Move the next segment, with its leading '/', to the output.
		b.emit(byte(pending))
		pending = -1
		for b.more() && b.at(0) != '/' {
			b.emit(b.at(0))
			b.r++
		}
	}

	return b.bytes()
}
