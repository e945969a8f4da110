// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package anomaly

// Tracker accumulates anomaly flags and the expected response status for one
// transaction. The zero value is ready to use. A Tracker is not safe for
// concurrent use; each transaction owns its own.
type Tracker struct {
	flags  Flags
	status int
}

// Raise adds flags to the set.
func (t *Tracker) Raise(f Flags) {
	t.flags |= f
}

// Flags returns the accumulated flags.
func (t *Tracker) Flags() Flags {
	return t.flags
}

// ExpectStatus records the response status the backend is expected to send.
// A later call overwrites an earlier one.
func (t *Tracker) ExpectStatus(code int) {
	t.status = code
}

// ExpectedStatus returns the recorded status, or 0 when none was recorded.
func (t *Tracker) ExpectedStatus() int {
	return t.status
}

// Err returns a *StatusError when an expected status was recorded, nil otherwise.
func (t *Tracker) Err() error {
	if t.status == 0 {
		return nil
	}
	return &StatusError{flags: t.flags, code: t.status}
}
