// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

//go:generate mockgen -copyright_file=../.github/license-header.txt -source=env.go -destination=mocks/mock_env_reader.go -package=mocks EnvReader

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

// Environment variables read by Discover.
const (
	EnvConfigPath  = "URINORM_CONFIG"
	EnvPersonality = "URINORM_PERSONALITY"
)

// EnvReader defines an interface for environment variable access
type EnvReader interface {
	Getenv(key string) string
}

// OSEnvReader implements EnvReader using the standard os package
type OSEnvReader struct{}

// Getenv returns the value of the environment variable named by the key
func (*OSEnvReader) Getenv(key string) string {
	return os.Getenv(key)
}

// searchConfigFile locates a file in the XDG config directories.
var searchConfigFile = xdg.SearchConfigFile

// Discover finds the configuration to use, in order:
//   - the file named by URINORM_CONFIG
//   - urinorm/config.yaml in the XDG config directories
//   - the preset named by URINORM_PERSONALITY
//   - Default
func Discover(env EnvReader) (*Config, error) {
	if path := env.Getenv(EnvConfigPath); path != "" {
		return Load(path)
	}

	// xdg reports a missing file as a plain error, so any error falls through.
	if path, err := searchConfigFile(filepath.Join("urinorm", "config.yaml")); err == nil {
		return Load(path)
	}

	if p := env.Getenv(EnvPersonality); p != "" {
		return ForPersonality(Personality(p))
	}
	return Default(), nil
}
