// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Command urinorm normalizes HTTP request-targets the way a chosen web server
// would and reports the evasion anomalies it finds.
//
// Targets are read from the arguments, or one per line from standard input,
// and each result is written as a JSON line. With --listen the command instead
// runs an HTTP server that answers every request with its inspection result
// and exposes Prometheus metrics on /metrics.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/stacklok/urinorm/config"
	"github.com/stacklok/urinorm/logging"
	"github.com/stacklok/urinorm/rules"
	"github.com/stacklok/urinorm/uri"
)

type options struct {
	personality string
	configPath  string
	rulesPath   string
	host        string
	localPort   int
	listen      string
	enforce     bool
	blockLogs   float64
	logFormat   logging.Format
	debug       bool
}

type streams struct {
	in  io.Reader
	out io.Writer
	err io.Writer
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], streams{in: os.Stdin, out: os.Stdout, err: os.Stderr}, &config.OSEnvReader{})
	stop()
	os.Exit(code)
}

func run(ctx context.Context, args []string, s streams, env config.EnvReader) int {
	opts, targets, err := parseFlags(args, s.err)
	if errors.Is(err, pflag.ErrHelp) {
		return 0
	}
	if err != nil {
		return 2
	}

	level := slog.LevelInfo
	if opts.debug {
		level = slog.LevelDebug
	}
	logger := logging.New(logging.WithFormat(opts.logFormat), logging.WithLevel(level), logging.WithOutput(s.err))

	if err := execute(ctx, opts, targets, s, env, logger); err != nil {
		for _, e := range rules.ExpressionErrors(err) {
			logger.Error("invalid rule expression",
				slog.String("rule", e.Rule), slog.String("stage", string(e.Stage)), slog.Any("issues", e.Issues))
		}
		logger.Error("urinorm failed", slog.Any("error", err))
		return 1
	}
	return 0
}

func parseFlags(args []string, stderr io.Writer) (*options, []string, error) {
	opts := &options{logFormat: logging.FormatJSON}

	fs := pflag.NewFlagSet("urinorm", pflag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.StringVarP(&opts.personality, "personality", "p", "",
		fmt.Sprintf("server personality to emulate %v", config.Personalities))
	fs.StringVarP(&opts.configPath, "config", "c", "", "YAML configuration file")
	fs.StringVarP(&opts.rulesPath, "rules", "r", "", "YAML file of inspection rules")
	fs.StringVar(&opts.host, "host", "", "Host header to resolve targets without an authority against")
	fs.IntVar(&opts.localPort, "local-port", 0, "port the request was received on, 0 if unknown")
	fs.StringVar(&opts.listen, "listen", "", "serve inspection results over HTTP on this address")
	fs.BoolVar(&opts.enforce, "enforce", false, "with --listen, answer requests with their expected status")
	fs.Float64Var(&opts.blockLogs, "block-log-rate", 10,
		"with --listen, maximum blocked-request log entries per second, 0 or less for no limit")
	fs.Var(&opts.logFormat, "log-format", "log output format (json or text)")
	fs.BoolVar(&opts.debug, "debug", false, "enable debug logging")

	if err := fs.Parse(args); err != nil {
		return nil, nil, err
	}
	if opts.personality != "" && opts.configPath != "" {
		err := errors.New("--personality and --config are mutually exclusive")
		_, _ = fmt.Fprintln(stderr, err)
		return nil, nil, err
	}
	return opts, fs.Args(), nil
}

func execute(
	ctx context.Context, opts *options, targets []string, s streams, env config.EnvReader, logger *slog.Logger,
) error {
	cfg, err := loadConfig(opts, env)
	if err != nil {
		return err
	}
	logger.Debug("configuration loaded", slog.String("personality", string(cfg.Personality)))

	set, err := loadRules(opts.rulesPath)
	if err != nil {
		return err
	}

	if opts.listen != "" {
		return serve(ctx, opts, cfg, set, logger)
	}

	n, err := uri.NewNormalizer(cfg, uri.WithLogger(logger))
	if err != nil {
		return err
	}
	return inspectAll(opts, n, set, targets, s)
}

func loadConfig(opts *options, env config.EnvReader) (*config.Config, error) {
	switch {
	case opts.configPath != "":
		return config.Load(opts.configPath)
	case opts.personality != "":
		return config.ForPersonality(config.Personality(opts.personality))
	default:
		return config.Discover(env)
	}
}

func loadRules(path string) (*rules.RuleSet, error) {
	if path == "" {
		return nil, nil
	}
	list, err := rules.Load(path)
	if err != nil {
		return nil, err
	}
	return rules.NewEngine().CompileAll(list)
}
