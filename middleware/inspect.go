// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package middleware

import (
	"context"
	"log/slog"
	"net"
	"net/http"

	"golang.org/x/time/rate"

	"github.com/stacklok/urinorm/rules"
	"github.com/stacklok/urinorm/uri"
)

type contextKey struct{}

// FromContext returns the inspection result stored by [Inspect].
func FromContext(ctx context.Context) (*uri.Result, bool) {
	res, ok := ctx.Value(contextKey{}).(*uri.Result)
	return res, ok
}

// RuleRecorder observes rule matches.
type RuleRecorder interface {
	ObserveRule(name string)
}

type inspector struct {
	normalizer *uri.Normalizer
	logger     *slog.Logger
	rules      *rules.RuleSet
	recorder   RuleRecorder
	enforce    bool
	logLimit   *rate.Limiter
}

// Option configures the Inspect middleware.
type Option func(*inspector)

// WithLogger sets the logger blocked requests and rule errors are reported to.
func WithLogger(l *slog.Logger) Option {
	return func(i *inspector) {
		i.logger = l
	}
}

// WithRules sets the rules evaluated against every request. The first
// matching rule blocks the request.
func WithRules(set *rules.RuleSet) Option {
	return func(i *inspector) {
		i.rules = set
	}
}

// WithRuleRecorder sets a recorder notified of every rule match.
func WithRuleRecorder(r RuleRecorder) Option {
	return func(i *inspector) {
		i.recorder = r
	}
}

// WithEnforcement makes the middleware answer requests a backend is expected
// to reject with the expected status instead of passing them on.
func WithEnforcement(enforce bool) Option {
	return func(i *inspector) {
		i.enforce = enforce
	}
}

// WithBlockLogLimit limits "request blocked" log entries to r per second with
// the given burst. Blocking itself is not limited.
func WithBlockLogLimit(r rate.Limit, burst int) Option {
	return func(i *inspector) {
		i.logLimit = rate.NewLimiter(r, burst)
	}
}

// Inspect returns middleware that normalizes the request-target of every
// request with n and makes the result available through [FromContext].
func Inspect(n *uri.Normalizer, opts ...Option) func(http.Handler) http.Handler {
	i := &inspector{
		normalizer: n,
		logger:     slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(i)
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			i.serve(next, w, r)
		})
	}
}

func (i *inspector) serve(next http.Handler, w http.ResponseWriter, r *http.Request) {
	target := r.RequestURI
	if target == "" {
		target = r.URL.RequestURI()
	}

	req := uri.Request{Target: []byte(target), LocalPort: localPort(r.Context())}
	if r.Host != "" {
		req.Host = []byte(r.Host)
	}

	res, err := i.normalizer.Inspect(req)
	if err != nil {
		i.logger.Error("failed to inspect request", slog.String("target", target), slog.Any("error", err))
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	match, err := i.rules.Evaluate(res)
	if err != nil {
		i.logger.Warn("rule evaluation failed", slog.String("target", target), slog.Any("error", err))
	}
	if match != nil {
		if i.recorder != nil {
			i.recorder.ObserveRule(match.Rule.Name)
		}
		i.block(w, target, match.Status(), slog.String("rule", match.Rule.Name), slog.Any("flags", res.Flags))
		return
	}

	if i.enforce && res.ExpectedStatus != 0 {
		i.block(w, target, res.ExpectedStatus, slog.Any("flags", res.Flags))
		return
	}

	next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), contextKey{}, res)))
}

func (i *inspector) block(w http.ResponseWriter, target string, status int, attrs ...any) {
	if i.logLimit == nil || i.logLimit.Allow() {
		i.logger.Info("request blocked",
			append([]any{slog.String("target", target), slog.Int("status", status)}, attrs...)...)
	}
	http.Error(w, http.StatusText(status), status)
}

// localPort returns the port of the local address the server stored in ctx,
// or 0 when it is not known.
func localPort(ctx context.Context) int {
	addr, ok := ctx.Value(http.LocalAddrContextKey).(net.Addr)
	if !ok {
		return 0
	}
	if tcp, ok := addr.(*net.TCPAddr); ok {
		return tcp.Port
	}
	return 0
}
