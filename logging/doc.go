// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package logging builds the [log/slog.Logger] used by the urinorm command and
handed to the normalizer and HTTP middleware.

# Defaults

  - Format: JSON ([FormatJSON]) via [log/slog.JSONHandler]
  - Level: INFO ([log/slog.LevelInfo])
  - Output: [os.Stderr]
  - Timestamps: [time.RFC3339]
  - Byte slices: logged as strings, so raw and normalized URI components
    stay readable

# Usage

	logger := logging.New(
		logging.WithFormat(logging.FormatText),
		logging.WithLevel(slog.LevelDebug),
	)
	n, err := uri.NewNormalizer(cfg, uri.WithLogger(logger))

[Format] implements [github.com/spf13/pflag.Value], so it can be bound
directly to a command-line flag:

	format := logging.FormatJSON
	flags.Var(&format, "log-format", "log output format (json or text)")
*/
package logging
