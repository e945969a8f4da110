// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathnorm

// buffer rewrites a byte slice in place. Bytes are read at r and written at
// w, and w never passes r.
type buffer struct {
	data []byte
	r, w int
}

func (b *buffer) more() bool {
	return b.r < len(b.data)
}

// remaining returns the number of unread bytes, the byte at r included.
func (b *buffer) remaining() int {
	return len(b.data) - b.r
}

// at returns the byte off positions past the read cursor.
func (b *buffer) at(off int) byte {
	return b.data[b.r+off]
}

func (b *buffer) emit(c byte) {
	b.data[b.w] = c
	b.w++
}

// copyRange writes data[from:to] at the write cursor.
func (b *buffer) copyRange(from, to int) {
	b.w += copy(b.data[b.w:], b.data[from:to])
}

// dropSegment moves the write cursor back over the last output segment and
// the separator before it.
func (b *buffer) dropSegment() {
	for b.w > 0 && b.data[b.w-1] != '/' {
		b.w--
	}
	if b.w > 0 {
		b.w--
	}
}

func (b *buffer) bytes() []byte {
	return b.data[:b.w]
}

// hexByte converts two hex digits to a byte. Non-hex input is converted
// anyway and wraps, which is what best-effort decoding of invalid escapes
// relies on.
func hexByte(hi, lo byte) byte {
	return hexDigit(hi)<<4 + hexDigit(lo)
}

func hexDigit(d byte) byte {
	if d >= 'A' {
		return (d & 0xDF) - 'A' + 10
	}
	return d - '0'
}

func isHex(c byte) bool {
	return ('0' <= c && c <= '9') || ('a' <= c && c <= 'f') || ('A' <= c && c <= 'F')
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + 'a' - 'A'
	}
	return c
}
