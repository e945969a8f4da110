// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package pathnorm

import (
	"github.com/stacklok/urinorm/anomaly"
	"github.com/stacklok/urinorm/config"
)

// Normalize decodes path, converts or validates its UTF-8 and removes dot
// segments. All stages work in place on path.
func Normalize(path []byte, cfg *config.Config, tr *anomaly.Tracker) ([]byte, error) {
	path, err := Decode(path, cfg, tr)
	if err != nil {
		return nil, err
	}

	if cfg.PathConvertUTF8 {
		path = DecodeUTF8(path, cfg, tr)
	} else {
		ValidateUTF8(path, cfg, tr)
	}

	return RemoveDotSegments(path), nil
}
