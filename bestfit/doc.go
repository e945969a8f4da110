// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package bestfit maps Unicode codepoints to the single byte a legacy code page
would display them as.

Some web servers fold wide characters down to a single-byte code page before
they look at a request path, so U+FF0F (fullwidth solidus) can end up acting
as "/". A [Table] emulates that folding for the path normalizer.

# Lookup Rules

  - codepoints below 0x100 map to themselves
  - codepoints above 0xFFFF map to the replacement byte
  - anything else maps through the table, or to the replacement byte when absent

# Tables

[Windows1252] derives a table for the Windows-1252 code page from the
golang.org/x/text tables. [FromTriplets] imports the classic
(high, low, byte) triplet format terminated by an all-zero triplet.
*/
package bestfit
