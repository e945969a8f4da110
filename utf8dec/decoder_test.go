// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package utf8dec

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// feed runs input through a fresh decoder and returns the result of every step.
func feed(d *Decoder, input []byte) []Result {
	out := make([]Result, 0, len(input))
	for _, b := range input {
		out = append(out, d.Step(b))
	}
	return out
}

func TestDecoder_Accept(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		input  []byte
		cp     rune
		length int
	}{
		{"ASCII", []byte("A"), 'A', 1},
		{"two bytes", []byte("é"), 'é', 2},
		{"three bytes", []byte("€"), '€', 3},
		{"four bytes", []byte("😀"), 0x1F600, 4},
		{"fullwidth solidus", []byte{0xEF, 0xBC, 0x8F}, 0xFF0F, 3},
		{"overlong NUL", []byte{0xC0, 0x80}, 0, 2},
		{"overlong slash in two bytes", []byte{0xC0, 0xAF}, '/', 2},
		{"overlong slash in three bytes", []byte{0xE0, 0x80, 0xAF}, '/', 3},
		{"overlong slash in four bytes", []byte{0xF0, 0x80, 0x80, 0xAF}, '/', 4},
		{"surrogate half", []byte{0xED, 0xA0, 0x80}, 0xD800, 3},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var d Decoder
			results := feed(&d, tt.input)

			for _, r := range results[:len(results)-1] {
				assert.Equal(t, Continue, r)
			}
			require.Equal(t, Accept, results[len(results)-1])
			assert.Equal(t, tt.cp, d.Codepoint())
			assert.Equal(t, tt.length, d.Length())
			assert.False(t, d.Pending())
		})
	}
}

func TestDecoder_Reject(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		input []byte
		want  []Result
	}{
		{"stray continuation byte", []byte{0x80}, []Result{Reject}},
		{"lead byte 0xF8", []byte{0xF8}, []Result{Reject}},
		{"lead byte 0xFF", []byte{0xFF}, []Result{Reject}},
		{"lead followed by ASCII", []byte{0xC3, 'A'}, []Result{Continue, Reject}},
		{"three-byte sequence cut short", []byte{0xE2, 0x82, 'x'}, []Result{Continue, Continue, Reject}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			var d Decoder
			assert.Equal(t, tt.want, feed(&d, tt.input))
			assert.False(t, d.Pending(), "decoder should reset after a rejection")
		})
	}
}

func TestDecoder_ResumesAfterReject(t *testing.T) {
	t.Parallel()

	var d Decoder
	require.Equal(t, Continue, d.Step(0xC3))
	require.Equal(t, Reject, d.Step('A'))

	// The rejected byte can be fed again as the start of a new sequence.
	require.Equal(t, Accept, d.Step('A'))
	assert.Equal(t, 'A', d.Codepoint())
}

func TestDecoder_Pending(t *testing.T) {
	t.Parallel()

	var d Decoder
	d.Step(0xE2)
	assert.True(t, d.Pending())
	d.Reset()
	assert.False(t, d.Pending())
}

func TestMinLength(t *testing.T) {
	t.Parallel()

	assert.Equal(t, 1, MinLength(0x7F))
	assert.Equal(t, 2, MinLength(0x80))
	assert.Equal(t, 2, MinLength(0x7FF))
	assert.Equal(t, 3, MinLength(0x800))
	assert.Equal(t, 3, MinLength(0xFFFF))
	assert.Equal(t, 4, MinLength(0x10000))
}

func TestResult_String(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "continue", Continue.String())
	assert.Equal(t, "accept", Accept.String())
	assert.Equal(t, "reject", Reject.String())
	assert.Equal(t, "unknown", Result(9).String())
}
