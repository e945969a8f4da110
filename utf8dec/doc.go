// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package utf8dec provides a byte-at-a-time UTF-8 decoder that accepts
// overlong encodings.
//
// The standard library rejects overlong forms outright. An inspection engine
// needs to decode them so that their use can be detected and reported, so
// [Decoder] only rejects sequences that are structurally broken: a stray
// continuation byte, a lead byte of 0xF8 or above, or a lead byte followed by
// something other than a continuation byte.
//
//	var d utf8dec.Decoder
//	for _, b := range input {
//		switch d.Step(b) {
//		case utf8dec.Accept:
//			use(d.Codepoint(), d.Length())
//		case utf8dec.Reject:
//			// the decoder is back in its initial state
//		}
//	}
package utf8dec
