// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"fmt"
	"net/http"
	"sync"

	"github.com/google/cel-go/cel"

	"github.com/stacklok/urinorm/uri"
)

const (
	// DefaultMaxExpressionLength is the maximum allowed length of a rule expression.
	DefaultMaxExpressionLength = 10000

	// DefaultCostLimit is the default runtime cost limit for evaluating one rule.
	DefaultCostLimit = 1000000
)

// Engine compiles rules. It is safe for concurrent use.
type Engine struct {
	once sync.Once
	env  *cel.Env
	err  error

	maxExpressionLength int
	costLimit           uint64
}

// NewEngine returns an Engine with the default expression length and cost
// limits.
func NewEngine() *Engine {
	return &Engine{
		maxExpressionLength: DefaultMaxExpressionLength,
		costLimit:           DefaultCostLimit,
	}
}

// WithMaxExpressionLength sets the maximum allowed expression length.
func (e *Engine) WithMaxExpressionLength(maxLen int) *Engine {
	e.maxExpressionLength = maxLen
	return e
}

// WithCostLimit sets the runtime cost limit for evaluating a rule.
func (e *Engine) WithCostLimit(limit uint64) *Engine {
	e.costLimit = limit
	return e
}

// getEnv returns the CEL environment, creating it on first use.
func (e *Engine) getEnv() (*cel.Env, error) {
	e.once.Do(func() {
		components := cel.MapType(cel.StringType, cel.DynType)
		e.env, e.err = cel.NewEnv(
			cel.Variable("raw", components),
			cel.Variable("uri", components),
			cel.Variable("flags", cel.ListType(cel.StringType)),
			cel.Variable("expected_status", cel.IntType),
		)
	})
	return e.env, e.err
}

// Check verifies that expr is a valid rule expression without compiling it.
func (e *Engine) Check(expr string) error {
	_, _, err := e.check("", expr)
	return err
}

func (e *Engine) check(name, expr string) (*cel.Env, *cel.Ast, error) {
	if len(expr) > e.maxExpressionLength {
		return nil, nil, fmt.Errorf("%w: expression length %d exceeds maximum of %d",
			ErrExpressionCheck, len(expr), e.maxExpressionLength)
	}

	env, err := e.getEnv()
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get CEL environment: %w", err)
	}

	parsed, issues := env.Parse(expr)
	if issues.Err() != nil {
		return nil, nil, newExpressionError(name, expr, StageParse, issues)
	}

	checked, issues := env.Check(parsed)
	if issues.Err() != nil {
		return nil, nil, newExpressionError(name, expr, StageCheck, issues)
	}

	if out := checked.OutputType(); !out.IsExactType(cel.BoolType) && !out.IsExactType(cel.DynType) {
		return nil, nil, fmt.Errorf("%w: rule %q evaluates to %s, not bool", ErrInvalidResult, name, out)
	}

	return env, checked, nil
}

// Compile checks r and compiles its expression.
func (e *Engine) Compile(r Rule) (*CompiledRule, error) {
	if err := r.validate(); err != nil {
		return nil, err
	}

	env, checked, err := e.check(r.Name, r.Expression)
	if err != nil {
		return nil, err
	}

	program, err := env.Program(checked, cel.CostLimit(e.costLimit))
	if err != nil {
		return nil, fmt.Errorf("failed to create program for rule %q: %w", r.Name, err)
	}

	return &CompiledRule{rule: r, program: program}, nil
}

// CompileAll compiles rules in order. All compilation errors are returned
// together.
func (e *Engine) CompileAll(rules []Rule) (*RuleSet, error) {
	set := &RuleSet{rules: make([]*CompiledRule, 0, len(rules))}
	seen := make(map[string]bool, len(rules))

	var errs []error
	for _, r := range rules {
		if seen[r.Name] {
			errs = append(errs, fmt.Errorf("%w: duplicate rule name %q", ErrInvalidRule, r.Name))
			continue
		}
		seen[r.Name] = true

		cr, err := e.Compile(r)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		set.rules = append(set.rules, cr)
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return set, nil
}

// CompiledRule is a rule ready for evaluation.
type CompiledRule struct {
	rule    Rule
	program cel.Program
}

// Rule returns the rule cr was compiled from.
func (cr *CompiledRule) Rule() Rule {
	return cr.rule
}

// Matches reports whether the rule matches res.
func (cr *CompiledRule) Matches(res *uri.Result) (bool, error) {
	out, _, err := cr.program.Eval(activation(res))
	if err != nil {
		return false, fmt.Errorf("%w: rule %q: %s", ErrEvaluation, cr.rule.Name, err)
	}

	matched, ok := out.Value().(bool)
	if !ok {
		return false, fmt.Errorf("%w: rule %q: expected bool, got %T", ErrInvalidResult, cr.rule.Name, out.Value())
	}
	return matched, nil
}

// Match is a rule that matched an inspected request.
type Match struct {
	Rule Rule
}

// Status returns the status the request should be answered with, defaulting
// to 403 when the rule does not name one.
func (m *Match) Status() int {
	if m.Rule.Status == 0 {
		return http.StatusForbidden
	}
	return m.Rule.Status
}

// RuleSet is an ordered list of compiled rules.
type RuleSet struct {
	rules []*CompiledRule
}

// Len returns the number of rules in s.
func (s *RuleSet) Len() int {
	if s == nil {
		return 0
	}
	return len(s.rules)
}

// Evaluate returns the first rule that matches res, or nil if none does.
// Evaluation stops at the first error.
func (s *RuleSet) Evaluate(res *uri.Result) (*Match, error) {
	if s == nil {
		return nil, nil
	}
	for _, cr := range s.rules {
		matched, err := cr.Matches(res)
		if err != nil {
			return nil, err
		}
		if matched {
			return &Match{Rule: cr.rule}, nil
		}
	}
	return nil, nil
}

func activation(res *uri.Result) map[string]any {
	return map[string]any{
		"raw":             components(res.Raw),
		"uri":             components(res.Normalized),
		"flags":           res.Flags.Names(),
		"expected_status": int64(res.ExpectedStatus),
	}
}

func components(u *uri.ParsedURI) map[string]any {
	m := map[string]any{}
	if u == nil {
		m["port_number"] = int64(0)
		return m
	}

	set := func(key string, b []byte) {
		if b != nil {
			m[key] = string(b)
		}
	}
	set("scheme", u.Scheme)
	set("username", u.Username)
	set("password", u.Password)
	set("hostname", u.Hostname)
	set("port", u.Port)
	set("path", u.Path)
	set("query", u.Query)
	set("fragment", u.Fragment)
	m["port_number"] = int64(u.PortNumber)
	return m
}
