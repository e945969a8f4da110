// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package config defines how request-target paths are normalized.

A [Config] is read by every normalization stage and must not be modified
while a normalization pass is running. Share one *Config between goroutines
freely once it has been validated.

# Personalities

Web servers disagree on how to treat encoded separators, NUL bytes, %u
escapes and UTF-8. A [Personality] selects a preset that emulates one of
them:

	cfg, err := config.ForPersonality(config.PersonalityIIS70)

# Anomaly Policies

Each anomaly class has its own policy type so that a switch over it can be
checked for exhaustiveness:

  - [NULPolicy] for raw and encoded NUL bytes
  - [SeparatorPolicy] for %2F and, with backslash separators, %5C
  - [InvalidEncodingPolicy] for a % that does not start a valid escape
  - [StatusPolicy] for invalid UTF-8 and non-ASCII %u escapes

An out-of-range policy value is a configuration bug. [Config.Validate] and
the path decoder report it as [ErrUnknownPolicy].

# Files

[Load] reads a YAML file, validates it against an embedded JSON schema and
overlays it on the selected personality:

	personality: apache_2
	path_case_insensitive: true
	path_replacement_char: "?"
	best_fit:
	  table: windows-1252
	  entries:
	    - codepoint: 0x2215
	      byte: "/"

[Discover] finds a file through the URINORM_CONFIG environment variable or
the XDG config directories.
*/
package config
