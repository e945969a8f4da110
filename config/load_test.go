// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/stacklok/urinorm/bestfit"
	"github.com/stacklok/urinorm/config/mocks"
)

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("empty document yields defaults", func(t *testing.T) {
		t.Parallel()
		cfg, err := Parse(nil)
		require.NoError(t, err)
		assert.Equal(t, Default().PathCompressSeparators, cfg.PathCompressSeparators)
		assert.Equal(t, PersonalityGeneric, cfg.Personality)
	})

	t.Run("overlays settings on the personality", func(t *testing.T) {
		t.Parallel()
		doc := `
personality: apache_2
path_case_insensitive: true
path_nul_raw_handling: terminate
path_replacement_char: "#"
`
		cfg, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, PersonalityApache2, cfg.Personality)
		assert.True(t, cfg.PathCaseInsensitive)
		assert.Equal(t, NULTerminate, cfg.PathNULRaw)
		assert.Equal(t, NULStatus404, cfg.PathNULEncoded, "unset keys keep the preset value")
		assert.Equal(t, SeparatorStatus404, cfg.PathEncodedSeparators)
		assert.Equal(t, Char('#'), cfg.PathReplacementChar)
	})

	t.Run("replacement char as integer", func(t *testing.T) {
		t.Parallel()
		cfg, err := Parse([]byte("path_replacement_char: 95\n"))
		require.NoError(t, err)
		assert.Equal(t, Char('_'), cfg.PathReplacementChar)
	})

	t.Run("best-fit entries extend the table", func(t *testing.T) {
		t.Parallel()
		doc := `
best_fit:
  table: windows-1252
  entries:
    - codepoint: 0x2215
      byte: "/"
    - codepoint: 0x4E00
      byte: 0x58
`
		cfg, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, byte('/'), cfg.MapCodepoint(0x2215))
		assert.Equal(t, byte('X'), cfg.MapCodepoint(0x4E00))
		assert.Equal(t, byte('A'), cfg.MapCodepoint(0xFF21))
	})

	t.Run("best-fit table none with entries", func(t *testing.T) {
		t.Parallel()
		doc := `
best_fit:
  table: none
  entries:
    - codepoint: 0x2215
      byte: "/"
`
		cfg, err := Parse([]byte(doc))
		require.NoError(t, err)
		assert.Equal(t, 1, cfg.BestFit.Len())
		assert.Equal(t, byte('?'), cfg.MapCodepoint(0xFF21))
	})

	t.Run("best-fit table none", func(t *testing.T) {
		t.Parallel()
		cfg, err := Parse([]byte("best_fit:\n  table: none\n"))
		require.NoError(t, err)
		assert.Nil(t, cfg.BestFit)
	})

	t.Run("schema violations", func(t *testing.T) {
		t.Parallel()
		tests := []struct {
			name string
			doc  string
		}{
			{"unknown key", "path_lowercase: true\n"},
			{"unknown policy", "path_nul_raw_handling: explode\n"},
			{"wrong type", "path_case_insensitive: yes please\n"},
			{"unknown personality", "personality: nginx\n"},
			{"codepoint below 0x100", "best_fit:\n  entries:\n    - codepoint: 65\n      byte: a\n"},
			{"replacement char too long", "path_replacement_char: abc\n"},
		}
		for _, tt := range tests {
			t.Run(tt.name, func(t *testing.T) {
				t.Parallel()
				_, err := Parse([]byte(tt.doc))
				require.ErrorIs(t, err, ErrInvalidConfig)
			})
		}
	})

	t.Run("malformed YAML", func(t *testing.T) {
		t.Parallel()
		_, err := Parse([]byte("path_case_insensitive: [\n"))
		require.ErrorIs(t, err, ErrInvalidConfig)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	t.Run("reads a file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("personality: iis_7_0\n"), 0o600))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, PersonalityIIS70, cfg.Personality)
		assert.Equal(t, bestfit.Windows1252Name, cfg.BestFit.Name())
	})

	t.Run("missing file", func(t *testing.T) {
		t.Parallel()
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.ErrorIs(t, err, os.ErrNotExist)
	})

	t.Run("error names the file", func(t *testing.T) {
		t.Parallel()
		path := filepath.Join(t.TempDir(), "bad.yaml")
		require.NoError(t, os.WriteFile(path, []byte("bogus: 1\n"), 0o600))

		_, err := Load(path)
		require.ErrorIs(t, err, ErrInvalidConfig)
		assert.Contains(t, err.Error(), path)
	})
}

func TestDiscover(t *testing.T) { //nolint:paralleltest // Replaces the package-level XDG search function
	original := searchConfigFile
	t.Cleanup(func() { searchConfigFile = original })

	notFound := func(string) (string, error) { return "", errors.New("could not locate file") }

	t.Run("config path from environment", func(t *testing.T) {
		searchConfigFile = notFound
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("personality: ids\n"), 0o600))

		ctrl := gomock.NewController(t)
		env := mocks.NewMockEnvReader(ctrl)
		env.EXPECT().Getenv(EnvConfigPath).Return(path)

		cfg, err := Discover(env)
		require.NoError(t, err)
		assert.Equal(t, PersonalityIDS, cfg.Personality)
	})

	t.Run("file found in XDG config directories", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte("personality: minimal\n"), 0o600))
		searchConfigFile = func(rel string) (string, error) {
			assert.Equal(t, filepath.Join("urinorm", "config.yaml"), rel)
			return path, nil
		}

		ctrl := gomock.NewController(t)
		env := mocks.NewMockEnvReader(ctrl)
		env.EXPECT().Getenv(EnvConfigPath).Return("")

		cfg, err := Discover(env)
		require.NoError(t, err)
		assert.Equal(t, PersonalityMinimal, cfg.Personality)
	})

	t.Run("personality from environment", func(t *testing.T) {
		searchConfigFile = notFound

		ctrl := gomock.NewController(t)
		env := mocks.NewMockEnvReader(ctrl)
		env.EXPECT().Getenv(EnvConfigPath).Return("")
		env.EXPECT().Getenv(EnvPersonality).Return("apache_2")

		cfg, err := Discover(env)
		require.NoError(t, err)
		assert.Equal(t, PersonalityApache2, cfg.Personality)
	})

	t.Run("falls back to defaults", func(t *testing.T) {
		searchConfigFile = notFound

		ctrl := gomock.NewController(t)
		env := mocks.NewMockEnvReader(ctrl)
		env.EXPECT().Getenv(gomock.Any()).Return("").Times(2)

		cfg, err := Discover(env)
		require.NoError(t, err)
		assert.Equal(t, PersonalityGeneric, cfg.Personality)
	})
}

func TestOSEnvReader(t *testing.T) { //nolint:paralleltest // Modifies environment variables
	t.Setenv("URINORM_TEST_VARIABLE", "value")
	reader := &OSEnvReader{}
	assert.Equal(t, "value", reader.Getenv("URINORM_TEST_VARIABLE"))

	var _ EnvReader = reader
}
