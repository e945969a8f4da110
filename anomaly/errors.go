// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package anomaly

import (
	"errors"
	"fmt"
	"net/http"
)

// StatusError carries the response status a backend is expected to answer
// with, together with the anomalies that led to it.
type StatusError struct {
	flags Flags
	code  int
}

// Error implements the error interface.
func (e *StatusError) Error() string {
	return fmt.Sprintf("backend expected to respond %d (%s)", e.code, e.flags)
}

// HTTPCode returns the expected HTTP status code.
func (e *StatusError) HTTPCode() int {
	return e.code
}

// Flags returns the anomalies recorded when the error was created.
func (e *StatusError) Flags() Flags {
	return e.flags
}

// Code extracts the expected status from an error chain.
// It returns http.StatusOK for a nil error and http.StatusInternalServerError
// when the chain holds no *StatusError.
func Code(err error) int {
	if err == nil {
		return http.StatusOK
	}

	var se *StatusError
	if errors.As(err, &se) {
		return se.code
	}

	return http.StatusInternalServerError
}
