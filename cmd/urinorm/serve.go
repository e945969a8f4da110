// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"github.com/stacklok/urinorm/config"
	"github.com/stacklok/urinorm/metrics"
	"github.com/stacklok/urinorm/middleware"
	"github.com/stacklok/urinorm/rules"
	"github.com/stacklok/urinorm/uri"
)

const shutdownTimeout = 5 * time.Second

// newHandler returns the handler served by --listen: /metrics exposes reg,
// every other request is answered with its inspection result.
func newHandler(
	opts *options, cfg *config.Config, set *rules.RuleSet, reg *prometheus.Registry, logger *slog.Logger,
) (http.Handler, error) {
	recorder, err := metrics.NewRecorder(reg)
	if err != nil {
		return nil, err
	}

	n, err := uri.NewNormalizer(cfg, uri.WithLogger(logger), uri.WithRecorder(recorder))
	if err != nil {
		return nil, err
	}

	inspect := middleware.Inspect(n,
		middleware.WithLogger(logger),
		middleware.WithRules(set),
		middleware.WithRuleRecorder(recorder),
		middleware.WithEnforcement(opts.enforce),
		middleware.WithBlockLogLimit(blockLogLimit(opts.blockLogs), 1),
	)

	echo := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		res, ok := middleware.FromContext(r.Context())
		if !ok {
			http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(res); err != nil {
			logger.Warn("failed to write inspection result", slog.Any("error", err))
		}
	})

	return middleware.Recover(logger)(withMetrics(promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), inspect(echo))), nil
}

// blockLogLimit converts --block-log-rate to a limit; values <= 0 disable it.
func blockLogLimit(perSecond float64) rate.Limit {
	if perSecond <= 0 {
		return rate.Inf
	}
	return rate.Limit(perSecond)
}

// withMetrics routes /metrics to metricsHandler and everything else to h.
// http.ServeMux is not used because it redirects uncleaned paths before the
// target can be inspected.
func withMetrics(metricsHandler, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.RequestURI == "/metrics" {
			metricsHandler.ServeHTTP(w, r)
			return
		}
		h.ServeHTTP(w, r)
	})
}

func serve(ctx context.Context, opts *options, cfg *config.Config, set *rules.RuleSet, logger *slog.Logger) error {
	handler, err := newHandler(opts, cfg, set, prometheus.NewRegistry(), logger)
	if err != nil {
		return err
	}

	srv := &http.Server{
		Addr:              opts.listen,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", slog.String("addr", opts.listen),
			slog.String("personality", string(cfg.Personality)))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("failed to shut down server: %w", err)
	}
	return nil
}
