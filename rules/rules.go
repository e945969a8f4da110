// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Rule is a named inspection rule.
type Rule struct {
	Name       string `json:"name" yaml:"name"`
	Expression string `json:"expression" yaml:"expression"`
	// Status is the response status for requests the rule matches. Zero
	// means 403.
	Status int `json:"status,omitempty" yaml:"status,omitempty"`
}

func (r Rule) validate() error {
	switch {
	case r.Name == "":
		return fmt.Errorf("%w: name is required", ErrInvalidRule)
	case r.Expression == "":
		return fmt.Errorf("%w: rule %q has no expression", ErrInvalidRule, r.Name)
	case r.Status != 0 && (r.Status < 400 || r.Status > 599):
		return fmt.Errorf("%w: rule %q status %d is not an error status", ErrInvalidRule, r.Name, r.Status)
	}
	return nil
}

type ruleFile struct {
	Rules []Rule `yaml:"rules"`
}

// Parse reads rules from a YAML document with a top-level "rules" list.
func Parse(data []byte) ([]Rule, error) {
	var f ruleFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("%w: failed to parse YAML: %w", ErrInvalidRule, err)
	}
	for _, r := range f.Rules {
		if err := r.validate(); err != nil {
			return nil, err
		}
	}
	return f.Rules, nil
}

// Load reads rules from the YAML file at path.
func Load(path string) ([]Rule, error) {
	// #nosec G304 -- path is supplied by the operator
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}

	rules, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rules, nil
}
