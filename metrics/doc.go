// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package metrics exports Prometheus counters for inspected request-targets.
//
// A [Recorder] satisfies [uri.Recorder] and can be handed to
// [uri.WithRecorder]:
//
//	rec, err := metrics.NewRecorder(prometheus.DefaultRegisterer)
//	if err != nil {
//		return err
//	}
//	n, err := uri.NewNormalizer(cfg, uri.WithRecorder(rec))
package metrics
