// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package uri

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/stacklok/urinorm/anomaly"
	"github.com/stacklok/urinorm/config"
	"github.com/stacklok/urinorm/pathnorm"
)

// Normalize returns a normalized copy of raw. raw itself is not modified.
//
// Anomalies are recorded on tr; they are never returned as errors. The only
// error is a configuration holding an unknown policy.
func Normalize(raw *ParsedURI, cfg *config.Config, tr *anomaly.Tracker) (*ParsedURI, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	u := &ParsedURI{}

	if raw.Scheme != nil {
		u.Scheme = bytes.Clone(raw.Scheme)
		lowerASCII(u.Scheme)
	}
	if raw.Username != nil {
		u.Username = NormalizeComponent(bytes.Clone(raw.Username))
	}
	if raw.Password != nil {
		u.Password = NormalizeComponent(bytes.Clone(raw.Password))
	}
	if raw.Hostname != nil {
		u.Hostname = NormalizeHostname(NormalizeComponent(bytes.Clone(raw.Hostname)))
	}
	if raw.Port != nil {
		u.Port = bytes.Clone(raw.Port)
		u.PortNumber = parsePositiveInteger(raw.Port)
	}
	if raw.Path != nil {
		path, err := pathnorm.Normalize(bytes.Clone(raw.Path), cfg, tr)
		if err != nil {
			return nil, err
		}
		u.Path = path
	}
	if raw.Query != nil {
		u.Query = NormalizeComponent(bytes.Clone(raw.Query))
	}
	if raw.Fragment != nil {
		u.Fragment = NormalizeComponent(bytes.Clone(raw.Fragment))
	}

	return u, nil
}

// Recorder observes the outcome of every inspected request.
type Recorder interface {
	Observe(flags anomaly.Flags, expectedStatus int)
}

// Normalizer runs decomposition, normalization and Host header handling under
// a fixed configuration.
type Normalizer struct {
	cfg      *config.Config
	logger   *slog.Logger
	recorder Recorder
}

// Option configures a Normalizer.
type Option func(*Normalizer)

// WithLogger sets the logger anomalies are reported to at debug level.
func WithLogger(l *slog.Logger) Option {
	return func(n *Normalizer) {
		n.logger = l
	}
}

// WithRecorder sets a Recorder that observes every call to Inspect.
func WithRecorder(r Recorder) Option {
	return func(n *Normalizer) {
		n.recorder = r
	}
}

// NewNormalizer validates cfg and returns a Normalizer using it.
func NewNormalizer(cfg *config.Config, opts ...Option) (*Normalizer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid normalizer configuration: %w", err)
	}

	n := &Normalizer{
		cfg:    cfg,
		logger: slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(n)
	}
	return n, nil
}

// Config returns the configuration n normalizes with.
func (n *Normalizer) Config() *config.Config {
	return n.cfg
}

// Normalize returns a normalized copy of raw.
func (n *Normalizer) Normalize(raw *ParsedURI, tr *anomaly.Tracker) (*ParsedURI, error) {
	return Normalize(raw, n.cfg, tr)
}

// Request is a request-target together with the connection details needed to
// resolve its hostname.
type Request struct {
	// Target is the request-target as received.
	Target []byte
	// Host is the Host header value, or nil when the request had none.
	Host []byte
	// LocalPort is the port the connection was accepted on, 0 if unknown.
	LocalPort int
}

// Result is the outcome of inspecting a single request.
type Result struct {
	Raw            *ParsedURI    `json:"raw"`
	Normalized     *ParsedURI    `json:"normalized"`
	Flags          anomaly.Flags `json:"-"`
	ExpectedStatus int           `json:"expected_status,omitempty"`
}

// MarshalJSON encodes the result with its flags as a list of names.
func (r *Result) MarshalJSON() ([]byte, error) {
	type plain Result
	return json.Marshal(struct {
		*plain
		Flags []string `json:"flags"`
	}{(*plain)(r), r.Flags.Names()})
}

// Err returns an [*anomaly.StatusError] when the result predicts a response
// status from the backend, and nil otherwise.
func (r *Result) Err() error {
	var tr anomaly.Tracker
	tr.Raise(r.Flags)
	tr.ExpectStatus(r.ExpectedStatus)
	return tr.Err()
}

// Inspect decomposes and normalizes req.Target. When the target carries no
// hostname and req.Host is set, the hostname is taken from req.Host.
func (n *Normalizer) Inspect(req Request) (*Result, error) {
	var tr anomaly.Tracker

	raw := Decompose(req.Target)
	normalized, err := n.Normalize(raw, &tr)
	if err != nil {
		return nil, err
	}

	if normalized.Hostname == nil && req.Host != nil {
		ReplaceHostname(normalized, req.Host, req.LocalPort, &tr)
	}

	res := &Result{
		Raw:            raw,
		Normalized:     normalized,
		Flags:          tr.Flags(),
		ExpectedStatus: tr.ExpectedStatus(),
	}

	if res.Flags != 0 || res.ExpectedStatus != 0 {
		n.logger.Debug("anomalies in request-target",
			slog.String("target", string(req.Target)),
			slog.Any("flags", res.Flags),
			slog.Int("expected_status", res.ExpectedStatus),
		)
	}
	if n.recorder != nil {
		n.recorder.Observe(res.Flags, res.ExpectedStatus)
	}

	return res, nil
}
