// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package utf8dec

// Result is the outcome of feeding one byte to a Decoder.
type Result uint8

const (
	// Continue means more bytes are needed to complete the sequence.
	Continue Result = iota
	// Accept means a complete codepoint is available from Codepoint.
	Accept
	// Reject means the sequence so far is invalid. The decoder has been reset.
	Reject
)

// String returns the result name.
func (r Result) String() string {
	switch r {
	case Continue:
		return "continue"
	case Accept:
		return "accept"
	case Reject:
		return "reject"
	default:
		return "unknown"
	}
}

// Decoder is an incremental UTF-8 decoder. The zero value is ready to use.
type Decoder struct {
	cp     rune
	need   uint8
	length uint8
}

// Step consumes one byte.
func (d *Decoder) Step(b byte) Result {
	if d.need == 0 {
		switch {
		case b < 0x80:
			d.cp, d.length = rune(b), 1
			return Accept
		case b < 0xC0:
			d.Reset()
			return Reject
		case b < 0xE0:
			d.cp, d.need = rune(b&0x1F), 1
		case b < 0xF0:
			d.cp, d.need = rune(b&0x0F), 2
		case b < 0xF8:
			d.cp, d.need = rune(b&0x07), 3
		default:
			d.Reset()
			return Reject
		}
		d.length = d.need + 1
		return Continue
	}

	if b&0xC0 != 0x80 {
		d.Reset()
		return Reject
	}

	d.cp = d.cp<<6 | rune(b&0x3F)
	d.need--
	if d.need == 0 {
		return Accept
	}
	return Continue
}

// Codepoint returns the codepoint completed by the last Accept.
func (d *Decoder) Codepoint() rune {
	return d.cp
}

// Length returns the number of bytes in the sequence completed by the last
// Accept.
func (d *Decoder) Length() int {
	return int(d.length)
}

// Pending reports whether the decoder is in the middle of a sequence.
func (d *Decoder) Pending() bool {
	return d.need != 0
}

// Reset returns the decoder to its initial state.
func (d *Decoder) Reset() {
	*d = Decoder{}
}

// MinLength returns the shortest UTF-8 encoding length for cp.
func MinLength(cp rune) int {
	switch {
	case cp < 0x80:
		return 1
	case cp < 0x800:
		return 2
	case cp < 0x10000:
		return 3
	default:
		return 4
	}
}
