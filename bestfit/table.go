// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package bestfit

import (
	"errors"
	"fmt"
)

// DefaultReplacement is the byte used for codepoints with no mapping.
const DefaultReplacement = '?'

// ErrTruncatedTable is returned by FromTriplets when the input ends mid-triplet
// or without the terminating sentinel.
var ErrTruncatedTable = errors.New("best-fit table is truncated")

// Entry maps one 16-bit codepoint to an output byte.
type Entry struct {
	Codepoint uint16 `json:"codepoint" yaml:"codepoint"`
	Byte      byte   `json:"byte" yaml:"byte"`
}

// Table is an immutable codepoint to byte mapping. It is safe for concurrent
// use. A nil *Table maps every codepoint at or above 0x100 to the replacement.
type Table struct {
	name    string
	entries []Entry
	index   map[uint16]byte
}

// New builds a table from entries. When a codepoint appears more than once the
// first entry wins.
func New(name string, entries []Entry) *Table {
	t := &Table{
		name:    name,
		entries: make([]Entry, 0, len(entries)),
		index:   make(map[uint16]byte, len(entries)),
	}
	for _, e := range entries {
		if _, dup := t.index[e.Codepoint]; dup {
			continue
		}
		t.index[e.Codepoint] = e.Byte
		t.entries = append(t.entries, e)
	}
	return t
}

// FromTriplets parses a table stored as (high, low, byte) triplets followed by
// a triplet whose high and low bytes are both zero.
func FromTriplets(name string, data []byte) (*Table, error) {
	var entries []Entry
	for i := 0; ; i += 3 {
		if i+3 > len(data) {
			return nil, fmt.Errorf("%w: %d trailing bytes at offset %d", ErrTruncatedTable, len(data)-i, i)
		}
		if data[i] == 0 && data[i+1] == 0 {
			break
		}
		entries = append(entries, Entry{
			Codepoint: uint16(data[i])<<8 | uint16(data[i+1]),
			Byte:      data[i+2],
		})
	}
	return New(name, entries), nil
}

// With returns a new table holding extra ahead of the receiver's entries, so
// extra overrides existing mappings.
func (t *Table) With(extra []Entry) *Table {
	name := ""
	var base []Entry
	if t != nil {
		name = t.name
		base = t.entries
	}
	all := make([]Entry, 0, len(extra)+len(base))
	all = append(all, extra...)
	all = append(all, base...)
	return New(name, all)
}

// Name returns the table name.
func (t *Table) Name() string {
	if t == nil {
		return ""
	}
	return t.name
}

// Len returns the number of distinct codepoints in the table.
func (t *Table) Len() int {
	if t == nil {
		return 0
	}
	return len(t.entries)
}

// Entries returns a copy of the table entries in insertion order.
func (t *Table) Entries() []Entry {
	if t == nil {
		return nil
	}
	return append([]Entry(nil), t.entries...)
}

// Lookup returns the byte for a 16-bit codepoint given as its high and low bytes.
func (t *Table) Lookup(high, low byte) (byte, bool) {
	if t == nil {
		return 0, false
	}
	b, ok := t.index[uint16(high)<<8|uint16(low)]
	return b, ok
}

// Map returns the single byte for codepoint cp.
func (t *Table) Map(cp rune, replacement byte) byte {
	if cp >= 0 && cp < 0x100 {
		return byte(cp)
	}
	if cp < 0 || cp > 0xFFFF {
		return replacement
	}
	if b, ok := t.Lookup(byte(cp>>8), byte(cp)); ok {
		return b
	}
	return replacement
}
