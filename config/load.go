// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package config

import (
	"embed"
	"fmt"
	"os"
	"strings"

	"github.com/go-viper/mapstructure/v2"
	"github.com/xeipuuv/gojsonschema"
	"gopkg.in/yaml.v3"

	"github.com/stacklok/urinorm/bestfit"
)

//go:embed data/config.schema.json
var embeddedSchemaFS embed.FS

const schemaFile = "data/config.schema.json"

// bestFitFile is the best_fit section of a configuration file.
type bestFitFile struct {
	Table   string          `yaml:"table"`
	Entries []bestFitRecord `yaml:"entries"`
}

type bestFitRecord struct {
	Codepoint uint16 `yaml:"codepoint"`
	Byte      Char   `yaml:"byte"`
}

// Load reads a YAML configuration file.
func Load(path string) (*Config, error) {
	// #nosec G304 - reading a user-specified configuration file is the point
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a YAML configuration document. Settings absent from the
// document keep the values of the selected personality.
func Parse(data []byte) (*Config, error) {
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidConfig, err)
	}
	if raw == nil {
		raw = map[string]any{}
	}

	if err := validateAgainstSchema(raw); err != nil {
		return nil, err
	}

	personality := PersonalityGeneric
	if p, ok := raw["personality"].(string); ok {
		personality = Personality(p)
	}
	cfg, err := ForPersonality(personality)
	if err != nil {
		return nil, err
	}

	if err := decode(raw, cfg); err != nil {
		return nil, err
	}

	if section, ok := raw["best_fit"]; ok {
		var bf bestFitFile
		if err := decode(section, &bf); err != nil {
			return nil, err
		}
		cfg.BestFit = resolveBestFit(cfg.BestFit, bf)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decode(input, result any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		DecodeHook: mapstructure.TextUnmarshallerHookFunc(),
		Result:     result,
		TagName:    "yaml",
	})
	if err != nil {
		return fmt.Errorf("failed to create config decoder: %w", err)
	}
	if err := dec.Decode(input); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	return nil
}

func resolveBestFit(current *bestfit.Table, bf bestFitFile) *bestfit.Table {
	switch bf.Table {
	case bestfit.Windows1252Name:
		current = bestfit.Windows1252()
	case "none":
		current = nil
	}

	if len(bf.Entries) == 0 {
		return current
	}

	extra := make([]bestfit.Entry, 0, len(bf.Entries))
	for _, r := range bf.Entries {
		extra = append(extra, bestfit.Entry{Codepoint: r.Codepoint, Byte: byte(r.Byte)})
	}
	if current == nil {
		return bestfit.New("custom", extra)
	}
	return current.With(extra)
}

// validateAgainstSchema checks a decoded document against the embedded schema.
func validateAgainstSchema(doc map[string]any) error {
	schemaData, err := embeddedSchemaFS.ReadFile(schemaFile)
	if err != nil {
		return fmt.Errorf("failed to read embedded schema %s: %w", schemaFile, err)
	}

	result, err := gojsonschema.Validate(
		gojsonschema.NewBytesLoader(schemaData),
		gojsonschema.NewGoLoader(doc),
	)
	if err != nil {
		return fmt.Errorf("%w: schema validation failed: %w", ErrInvalidConfig, err)
	}

	if result.Valid() {
		return nil
	}

	msgs := make([]string, 0, len(result.Errors()))
	for _, desc := range result.Errors() {
		msgs = append(msgs, desc.String())
	}
	return formatNumberedErrors(msgs)
}

// formatNumberedErrors formats schema violations as one error with a numbered list.
func formatNumberedErrors(msgs []string) error {
	if len(msgs) == 1 {
		return fmt.Errorf("%w: %s", ErrInvalidConfig, msgs[0])
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%d errors:\n", len(msgs))
	for i, msg := range msgs {
		fmt.Fprintf(&b, "  %d. %s\n", i+1, msg)
	}
	return fmt.Errorf("%w with %s", ErrInvalidConfig, strings.TrimSuffix(b.String(), "\n"))
}
