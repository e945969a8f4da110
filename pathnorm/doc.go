// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package pathnorm normalizes the path component of a request-target.

Every stage rewrites the buffer it is given in place and returns the shortened
slice. A stage reads ahead of where it writes, so its output is never longer
than its input and no input byte is read after it has been overwritten.

# Stages

[Normalize] runs the stages in the order a web server applies them:

  - [Decode] resolves %XX and, when enabled, %uXXXX escapes. Encoded NULs,
    encoded separators and malformed escapes are handled by the policies in
    [config.Config] and recorded on an [anomaly.Tracker].
  - [DecodeUTF8] rewrites UTF-8 sequences to single bytes through the
    configured best-fit table, or [ValidateUTF8] only records what it saw.
  - [RemoveDotSegments] removes "." and ".." segments as described in
    RFC 3986 section 5.2.4.

# Usage

	cfg, _ := config.ForPersonality(config.PersonalityIIS70)

	var tr anomaly.Tracker
	path, err := pathnorm.Normalize([]byte("/a/%c0%ae%c0%ae/etc"), cfg, &tr)
	if err != nil {
		return err
	}
	// path is "/etc"; tr.Flags() has anomaly.PathUTF8Overlong

The only error is [config.ErrUnknownPolicy]. Malformed input is never an
error: it produces a best-effort path and flags on the tracker.
*/
package pathnorm
