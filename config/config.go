// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

// Package config defines how request-target paths are normalized.
package config

import (
	"errors"
	"fmt"

	"github.com/stacklok/urinorm/bestfit"
)

// Sentinel errors for configuration problems.
var (
	// ErrInvalidConfig is returned when a configuration value is malformed.
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnknownPersonality is returned for a personality name with no preset.
	ErrUnknownPersonality = errors.New("unknown personality")
)

// Config holds the normalization options. It is read-only once validated.
type Config struct {
	// Personality records the preset the configuration started from.
	Personality Personality `json:"personality,omitempty" yaml:"personality,omitempty"`

	// PathCaseInsensitive lowercases every path byte.
	PathCaseInsensitive bool `json:"path_case_insensitive" yaml:"path_case_insensitive"`

	// PathBackslashSeparators treats "\" (raw or decoded) as "/".
	PathBackslashSeparators bool `json:"path_backslash_separators" yaml:"path_backslash_separators"`

	// PathCompressSeparators collapses consecutive "/" into one.
	PathCompressSeparators bool `json:"path_compress_separators" yaml:"path_compress_separators"`

	// PathDecodeUEncoding enables %uXXXX escapes.
	PathDecodeUEncoding bool `json:"path_decode_u_encoding" yaml:"path_decode_u_encoding"`

	// PathConvertUTF8 rewrites UTF-8 sequences to best-fit bytes. When false
	// the path is only validated.
	PathConvertUTF8 bool `json:"path_convert_utf8" yaml:"path_convert_utf8"`

	// PathNULRaw handles a literal NUL byte.
	PathNULRaw NULPolicy `json:"path_nul_raw_handling" yaml:"path_nul_raw_handling"`

	// PathNULEncoded handles an escape that decodes to NUL.
	PathNULEncoded NULPolicy `json:"path_nul_encoded_handling" yaml:"path_nul_encoded_handling"`

	// PathEncodedSeparators handles an escape that decodes to a separator.
	PathEncodedSeparators SeparatorPolicy `json:"path_encoded_separators" yaml:"path_encoded_separators"`

	// PathInvalidEncoding handles a % that does not start a valid escape.
	PathInvalidEncoding InvalidEncodingPolicy `json:"path_invalid_encoding_handling" yaml:"path_invalid_encoding_handling"`

	// PathInvalidUTF8 predicts the response to invalid UTF-8.
	PathInvalidUTF8 StatusPolicy `json:"path_invalid_utf8_handling" yaml:"path_invalid_utf8_handling"`

	// PathUnicodeMapping predicts the response to a %u escape outside Latin-1.
	PathUnicodeMapping StatusPolicy `json:"path_unicode_mapping" yaml:"path_unicode_mapping"`

	// PathReplacementChar is written for codepoints the best-fit table lacks.
	PathReplacementChar Char `json:"path_replacement_char" yaml:"path_replacement_char"`

	// BestFit maps wide codepoints to single bytes. A nil table maps every
	// codepoint above 0xFF to PathReplacementChar.
	BestFit *bestfit.Table `json:"-" yaml:"-"`
}

// Personality names a preset that emulates a web server.
type Personality string

// Known personalities.
const (
	PersonalityMinimal Personality = "minimal"
	PersonalityGeneric Personality = "generic"
	PersonalityIDS     Personality = "ids"
	PersonalityApache2 Personality = "apache_2"
	PersonalityIIS51   Personality = "iis_5_1"
	PersonalityIIS60   Personality = "iis_6_0"
	PersonalityIIS70   Personality = "iis_7_0"
)

// Personalities lists every known personality.
var Personalities = []Personality{
	PersonalityMinimal,
	PersonalityGeneric,
	PersonalityIDS,
	PersonalityApache2,
	PersonalityIIS51,
	PersonalityIIS60,
	PersonalityIIS70,
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (p *Personality) UnmarshalText(text []byte) error {
	for _, known := range Personalities {
		if string(known) == string(text) {
			*p = known
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrUnknownPersonality, text)
}

// Default returns the generic personality.
func Default() *Config {
	return generic()
}

// ForPersonality returns a new configuration for the named preset.
func ForPersonality(p Personality) (*Config, error) {
	var cfg *Config
	switch p {
	case PersonalityMinimal:
		cfg = minimal()
	case PersonalityGeneric, "":
		cfg = generic()
	case PersonalityIDS:
		cfg = ids()
	case PersonalityApache2:
		cfg = apache2()
	case PersonalityIIS51:
		cfg = iis51()
	case PersonalityIIS60:
		cfg = iis60()
	case PersonalityIIS70:
		cfg = iis70()
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownPersonality, p)
	}
	return cfg, nil
}

// minimal decodes escapes and nothing else.
func minimal() *Config {
	return &Config{
		Personality:           PersonalityMinimal,
		PathNULRaw:            NULLeave,
		PathNULEncoded:        NULLeave,
		PathEncodedSeparators: SeparatorDecode,
		PathInvalidEncoding:   InvalidPreservePercent,
		PathInvalidUTF8:       StatusLeave,
		PathUnicodeMapping:    StatusLeave,
		PathReplacementChar:   bestfit.DefaultReplacement,
	}
}

func generic() *Config {
	cfg := minimal()
	cfg.Personality = PersonalityGeneric
	cfg.PathCompressSeparators = true
	cfg.BestFit = bestfit.Windows1252()
	return cfg
}

// ids is the most aggressive preset: it folds everything a server might fold.
func ids() *Config {
	cfg := generic()
	cfg.Personality = PersonalityIDS
	cfg.PathCaseInsensitive = true
	cfg.PathBackslashSeparators = true
	cfg.PathDecodeUEncoding = true
	cfg.PathConvertUTF8 = true
	cfg.PathInvalidEncoding = InvalidDecode
	return cfg
}

func apache2() *Config {
	cfg := generic()
	cfg.Personality = PersonalityApache2
	cfg.PathNULRaw = NULStatus400
	cfg.PathNULEncoded = NULStatus404
	cfg.PathEncodedSeparators = SeparatorStatus404
	cfg.PathInvalidEncoding = InvalidStatus400
	return cfg
}

func iis51() *Config {
	cfg := generic()
	cfg.Personality = PersonalityIIS51
	cfg.PathCaseInsensitive = true
	cfg.PathBackslashSeparators = true
	cfg.PathDecodeUEncoding = true
	cfg.PathConvertUTF8 = true
	cfg.PathNULRaw = NULTerminate
	cfg.PathNULEncoded = NULTerminate
	return cfg
}

func iis60() *Config {
	cfg := iis51()
	cfg.Personality = PersonalityIIS60
	cfg.PathInvalidUTF8 = Status400
	return cfg
}

func iis70() *Config {
	cfg := iis60()
	cfg.Personality = PersonalityIIS70
	cfg.PathNULRaw = NULStatus400
	cfg.PathNULEncoded = NULStatus404
	cfg.PathInvalidEncoding = InvalidStatus400
	cfg.PathUnicodeMapping = Status400
	return cfg
}

// Validate reports every out-of-range policy value.
func (c *Config) Validate() error {
	var errs []error
	if !c.PathNULRaw.Valid() {
		errs = append(errs, fmt.Errorf("%w: path_nul_raw_handling=%s", ErrUnknownPolicy, c.PathNULRaw))
	}
	if !c.PathNULEncoded.Valid() {
		errs = append(errs, fmt.Errorf("%w: path_nul_encoded_handling=%s", ErrUnknownPolicy, c.PathNULEncoded))
	}
	if !c.PathEncodedSeparators.Valid() {
		errs = append(errs, fmt.Errorf("%w: path_encoded_separators=%s", ErrUnknownPolicy, c.PathEncodedSeparators))
	}
	if !c.PathInvalidEncoding.Valid() {
		errs = append(errs, fmt.Errorf("%w: path_invalid_encoding_handling=%s", ErrUnknownPolicy, c.PathInvalidEncoding))
	}
	if !c.PathInvalidUTF8.Valid() {
		errs = append(errs, fmt.Errorf("%w: path_invalid_utf8_handling=%s", ErrUnknownPolicy, c.PathInvalidUTF8))
	}
	if !c.PathUnicodeMapping.Valid() {
		errs = append(errs, fmt.Errorf("%w: path_unicode_mapping=%s", ErrUnknownPolicy, c.PathUnicodeMapping))
	}
	return errors.Join(errs...)
}

// MapCodepoint maps cp through the best-fit table.
func (c *Config) MapCodepoint(cp rune) byte {
	return c.BestFit.Map(cp, byte(c.PathReplacementChar))
}
