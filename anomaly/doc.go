// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package anomaly records the ambiguous or evasive encodings observed while a
request-target is normalized.

A [Tracker] is owned by a single transaction. Decoders raise [Flags] on it and
may attach an expected response status, the status a protected web server is
likely to answer with when it sees the same request. Flags accumulate and are
never cleared during a normalization pass.

# Basic Usage

	var tr anomaly.Tracker
	tr.Raise(anomaly.PathEncodedSeparator)
	tr.ExpectStatus(http.StatusNotFound)

	if tr.Flags().Has(anomaly.PathEncodedSeparator) {
		// correlate with the backend response
	}

# Expected Status

[Tracker.Err] turns an expected status into a [*StatusError] so that it can
travel through ordinary error handling:

	if err := tr.Err(); err != nil {
		http.Error(w, err.Error(), anomaly.Code(err))
	}
*/
package anomaly
