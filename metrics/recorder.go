// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package metrics

import (
	"fmt"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/stacklok/urinorm/anomaly"
)

const namespace = "urinorm"

// Recorder counts inspected requests, the anomalies seen in them, the
// backend statuses they are expected to produce and the rules they matched.
type Recorder struct {
	inspected      prometheus.Counter
	anomalies      *prometheus.CounterVec
	expectedStatus *prometheus.CounterVec
	ruleMatches    *prometheus.CounterVec
}

// NewRecorder creates a Recorder and registers its counters with reg.
func NewRecorder(reg prometheus.Registerer) (*Recorder, error) {
	r := &Recorder{
		inspected: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_inspected_total",
			Help:      "Number of request-targets inspected.",
		}),
		anomalies: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "anomalies_total",
			Help:      "Number of inspected request-targets that raised each anomaly flag.",
		}, []string{"flag"}),
		expectedStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "expected_status_total",
			Help:      "Number of inspected request-targets a backend is expected to reject, by status.",
		}, []string{"code"}),
		ruleMatches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rule_matches_total",
			Help:      "Number of inspected request-targets matched by each rule.",
		}, []string{"rule"}),
	}

	for _, c := range []prometheus.Collector{r.inspected, r.anomalies, r.expectedStatus, r.ruleMatches} {
		if err := reg.Register(c); err != nil {
			return nil, fmt.Errorf("failed to register metrics: %w", err)
		}
	}

	// Every flag is exported from zero.
	for _, f := range anomaly.All {
		r.anomalies.WithLabelValues(f.String())
	}

	return r, nil
}

// Observe records one inspected request.
func (r *Recorder) Observe(flags anomaly.Flags, expectedStatus int) {
	r.inspected.Inc()
	for _, name := range flags.Names() {
		r.anomalies.WithLabelValues(name).Inc()
	}
	if expectedStatus != 0 {
		r.expectedStatus.WithLabelValues(strconv.Itoa(expectedStatus)).Inc()
	}
}

// ObserveRule records a match of the named rule.
func (r *Recorder) ObserveRule(name string) {
	r.ruleMatches.WithLabelValues(name).Inc()
}
