// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathnorm

import (
	"net/http"

	"github.com/stacklok/urinorm/anomaly"
	"github.com/stacklok/urinorm/config"
)

// step tells the decode loop what to do with the byte an escape produced.
type step int

const (
	stepEmit step = iota
	stepSkip
	stepStop
)

type pathDecoder struct {
	cfg     *config.Config
	tr      *anomaly.Tracker
	buf     buffer
	prevSep bool
}

// Decode resolves percent escapes in path in place and returns the decoded
// prefix of path.
//
// Raw and encoded NUL bytes, encoded separators and malformed escapes are
// treated according to cfg. A terminate policy cuts the path at the NUL and
// discards the rest of the input. Anomalies and expected response statuses are
// recorded on tr. An error is returned only when cfg holds an unknown policy.
func Decode(path []byte, cfg *config.Config, tr *anomaly.Tracker) ([]byte, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	d := pathDecoder{cfg: cfg, tr: tr, buf: buffer{data: path}}
	return d.run(), nil
}

func (d *pathDecoder) run() []byte {
	b := &d.buf
	for b.more() {
		c := b.at(0)

		if c == '%' {
			var s step
			c, s = d.escape()
			switch s {
			case stepStop:
				return b.bytes()
			case stepSkip:
				continue
			case stepEmit:
			}
		} else {
			if c == 0 && d.nul(d.cfg.PathNULRaw) {
				return b.bytes()
			}
			b.r++
		}

		d.put(c)
	}
	return b.bytes()
}

// put writes a decoded byte, applying separator conversion, case folding and
// separator compression.
func (d *pathDecoder) put(c byte) {
	if c == '\\' && d.cfg.PathBackslashSeparators {
		c = '/'
	}
	if d.cfg.PathCaseInsensitive {
		c = toLower(c)
	}
	if d.cfg.PathCompressSeparators {
		if c == '/' {
			if d.prevSep {
				return
			}
			d.prevSep = true
		} else {
			d.prevSep = false
		}
	}
	d.buf.emit(c)
}

// escape handles the '%' at the read cursor.
func (d *pathDecoder) escape() (byte, step) {
	b := &d.buf
	if b.remaining() < 3 {
		return d.invalid(nil)
	}

	if d.cfg.PathDecodeUEncoding && (b.at(1) == 'u' || b.at(1) == 'U') {
		return d.escapeU()
	}

	if !isHex(b.at(1)) || !isHex(b.at(2)) {
		return d.invalid(func() (byte, step) {
			c := hexByte(b.at(1), b.at(2))
			b.r += 3
			return c, stepEmit
		})
	}

	return d.decoded(hexByte(b.at(1), b.at(2)), 3)
}

// escapeU handles a %u escape at the read cursor.
func (d *pathDecoder) escapeU() (byte, step) {
	b := &d.buf
	if b.remaining() < 6 {
		return d.invalid(nil)
	}

	x := b.data[b.r+2 : b.r+6]
	decode := func() (byte, step) {
		return d.decoded(d.unicode(hexByte(x[0], x[1]), hexByte(x[2], x[3])), 6)
	}
	for _, c := range x {
		if !isHex(c) {
			return d.invalid(decode)
		}
	}
	return decode()
}

// decoded applies the encoded-NUL and encoded-separator policies to c, the
// result of an escape width bytes long.
func (d *pathDecoder) decoded(c byte, width int) (byte, step) {
	b := &d.buf

	if c == 0 {
		d.tr.Raise(anomaly.PathEncodedNUL)
		if d.nul(d.cfg.PathNULEncoded) {
			return 0, stepStop
		}
	}

	if c == '/' || (c == '\\' && d.cfg.PathBackslashSeparators) {
		d.tr.Raise(anomaly.PathEncodedSeparator)
		switch d.cfg.PathEncodedSeparators {
		case config.SeparatorDecode:
			b.r += width
			return c, stepEmit
		case config.SeparatorStatus404:
			d.tr.ExpectStatus(http.StatusNotFound)
		case config.SeparatorLeave:
		}
		// Keep the escape: emit '%' and copy the rest as ordinary bytes.
		b.r++
		return '%', stepEmit
	}

	b.r += width
	return c, stepEmit
}

// unicode converts the two bytes of a %u escape to a single byte.
func (d *pathDecoder) unicode(hi, lo byte) byte {
	if hi == 0 {
		d.tr.Raise(anomaly.PathOverlongU)
		return lo
	}
	if hi == 0xFF {
		d.tr.Raise(anomaly.PathUTF8FullwidthEvasion)
	}
	setStatus(d.tr, d.cfg.PathUnicodeMapping)
	return d.cfg.MapCodepoint(rune(hi)<<8 | rune(lo))
}

// invalid applies the invalid-encoding policy to the '%' at the read cursor.
// decode performs best-effort decoding; it is nil when too few bytes remain
// for an escape.
func (d *pathDecoder) invalid(decode func() (byte, step)) (byte, step) {
	d.tr.Raise(anomaly.PathInvalidEncoding)

	switch d.cfg.PathInvalidEncoding {
	case config.InvalidRemovePercent:
		d.buf.r++
		return 0, stepSkip
	case config.InvalidDecode:
		if decode != nil {
			return decode()
		}
	case config.InvalidStatus400:
		d.tr.ExpectStatus(http.StatusBadRequest)
	case config.InvalidPreservePercent:
	}

	d.buf.r++
	return '%', stepEmit
}

// nul applies a NUL policy and reports whether the path ends here.
func (d *pathDecoder) nul(p config.NULPolicy) bool {
	switch p {
	case config.NULTerminate:
		return true
	case config.NULStatus400:
		d.tr.ExpectStatus(http.StatusBadRequest)
	case config.NULStatus404:
		d.tr.ExpectStatus(http.StatusNotFound)
	case config.NULLeave:
	}
	return false
}

func setStatus(tr *anomaly.Tracker, p config.StatusPolicy) {
	switch p {
	case config.Status400:
		tr.ExpectStatus(http.StatusBadRequest)
	case config.Status404:
		tr.ExpectStatus(http.StatusNotFound)
	case config.StatusLeave:
	}
}
