// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathnorm

import (
	"github.com/stacklok/urinorm/anomaly"
	"github.com/stacklok/urinorm/config"
	"github.com/stacklok/urinorm/utf8dec"
)

type utf8Pass struct {
	cfg     *config.Config
	tr      *anomaly.Tracker
	buf     buffer
	convert bool

	seenValid bool
	rejected  bool
}

// DecodeUTF8 rewrites every multi-byte UTF-8 sequence in path to the single
// byte the configured best-fit table maps its codepoint to, and returns the
// rewritten prefix of path.
//
// Overlong sequences are decoded, not rejected, and flagged. Bytes of an
// invalid sequence are copied through unchanged.
func DecodeUTF8(path []byte, cfg *config.Config, tr *anomaly.Tracker) []byte {
	p := utf8Pass{cfg: cfg, tr: tr, buf: buffer{data: path}, convert: true}
	p.run()
	return p.buf.bytes()
}

// ValidateUTF8 records the same anomalies as [DecodeUTF8] without modifying
// path.
func ValidateUTF8(path []byte, cfg *config.Config, tr *anomaly.Tracker) {
	p := utf8Pass{cfg: cfg, tr: tr, buf: buffer{data: path}}
	p.run()
}

func (p *utf8Pass) run() {
	var dec utf8dec.Decoder
	b := &p.buf
	// start of the sequence being decoded
	seq := 0

	for b.more() {
		switch dec.Step(b.at(0)) {
		case utf8dec.Continue:
			b.r++
		case utf8dec.Accept:
			b.r++
			p.accept(dec.Codepoint(), dec.Length())
			seq = b.r
		case utf8dec.Reject:
			p.reject()
			p.copyRange(seq, b.r)
			// A byte that cannot start a sequence is copied as is. Otherwise
			// the byte that broke the sequence is read again as a new lead.
			if seq == b.r {
				p.copyRange(b.r, b.r+1)
				b.r++
			}
			seq = b.r
		}
	}

	if dec.Pending() {
		p.reject()
		p.copyRange(seq, b.r)
	}

	if p.seenValid && !p.rejected {
		p.tr.Raise(anomaly.PathUTF8Valid)
	}
}

func (p *utf8Pass) accept(cp rune, length int) {
	if length == 1 {
		if p.convert {
			p.buf.emit(byte(cp))
		}
		return
	}

	p.seenValid = true
	if utf8dec.MinLength(cp) < length {
		p.tr.Raise(anomaly.PathUTF8Overlong)
	}
	if cp > 0xFEFF && cp < 0x10000 {
		p.tr.Raise(anomaly.PathUTF8FullwidthEvasion)
	}
	if p.convert {
		p.buf.emit(p.cfg.MapCodepoint(cp))
	}
}

func (p *utf8Pass) reject() {
	p.rejected = true
	p.tr.Raise(anomaly.PathUTF8Invalid)
	setStatus(p.tr, p.cfg.PathInvalidUTF8)
}

func (p *utf8Pass) copyRange(from, to int) {
	if p.convert {
		p.buf.copyRange(from, to)
	}
}
