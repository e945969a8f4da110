// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bestfit

import (
	"sync"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/unicode/norm"
	"golang.org/x/text/width"
)

// Windows1252Name is the name of the table returned by Windows1252.
const Windows1252Name = "windows-1252"

var windows1252 = sync.OnceValue(buildWindows1252)

// Windows1252 returns the shared best-fit table for the Windows-1252 code page.
func Windows1252() *Table {
	return windows1252()
}

// buildWindows1252 walks the basic multilingual plane above Latin-1 and keeps
// a mapping for every codepoint that has either an exact Windows-1252 byte,
// a fullwidth ASCII counterpart, or an ASCII base letter under canonical
// decomposition.
func buildWindows1252() *Table {
	var entries []Entry
	for cp := rune(0x100); cp <= 0xFFFF; cp++ {
		if !utf8.ValidRune(cp) {
			continue
		}
		if b, ok := fold1252(cp); ok {
			entries = append(entries, Entry{Codepoint: uint16(cp), Byte: b})
		}
	}
	return New(Windows1252Name, entries)
}

func fold1252(cp rune) (byte, bool) {
	if b, ok := charmap.Windows1252.EncodeRune(cp); ok {
		return b, true
	}

	if p := width.LookupRune(cp); p.Kind() == width.EastAsianFullwidth {
		if n := p.Narrow(); n > 0 && n < utf8.RuneSelf {
			return byte(n), true
		}
	}

	decomposed := norm.NFD.String(string(cp))
	base, size := utf8.DecodeRuneInString(decomposed)
	if base >= utf8.RuneSelf || size == len(decomposed) {
		return 0, false
	}
	for _, r := range decomposed[size:] {
		if !unicode.Is(unicode.Mn, r) {
			return 0, false
		}
	}
	return byte(base), true
}
