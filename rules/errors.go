// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package rules

import (
	"errors"
	"fmt"
	"strings"

	"github.com/google/cel-go/cel"
)

// Sentinel errors for rule operations.
var (
	// ErrInvalidRule is returned when a rule is missing a name or expression,
	// or carries an unusable status.
	ErrInvalidRule = errors.New("invalid rule")

	// ErrExpressionCheck is returned when a rule expression fails syntax or type checking.
	ErrExpressionCheck = errors.New("rule expression check failed")

	// ErrEvaluation is returned when evaluating a rule fails.
	ErrEvaluation = errors.New("rule evaluation failed")

	// ErrInvalidResult is returned when a rule expression does not produce a bool.
	ErrInvalidResult = errors.New("rule expression returned invalid result type")
)

// Stage is the compilation step a rule expression failed at.
type Stage string

const (
	// StageParse is the syntax check.
	StageParse Stage = "parse"
	// StageCheck is the type check against the request variables.
	StageCheck Stage = "check"
)

// Issue is one problem in a rule expression, positioned within the
// expression text.
type Issue struct {
	Line    int    `json:"line,omitempty"`
	Column  int    `json:"column,omitempty"`
	Message string `json:"message"`
}

func (i Issue) String() string {
	return fmt.Sprintf("%d:%d: %s", i.Line, i.Column, i.Message)
}

// ExpressionError reports every issue found while compiling one rule.
type ExpressionError struct {
	Rule       string  `json:"rule"`
	Expression string  `json:"expression"`
	Stage      Stage   `json:"stage"`
	Issues     []Issue `json:"issues"`
}

func newExpressionError(rule, expr string, stage Stage, issues *cel.Issues) *ExpressionError {
	e := &ExpressionError{Rule: rule, Expression: expr, Stage: stage}
	for _, ce := range issues.Errors() {
		e.Issues = append(e.Issues, Issue{
			Line:    ce.Location.Line(),
			Column:  ce.Location.Column(),
			Message: ce.Message,
		})
	}
	return e
}

func (e *ExpressionError) Error() string {
	msgs := make([]string, len(e.Issues))
	for i, issue := range e.Issues {
		msgs[i] = issue.String()
	}
	return fmt.Sprintf("%s: rule %q failed %s: %s", ErrExpressionCheck, e.Rule, e.Stage, strings.Join(msgs, "; "))
}

// Is reports whether target is [ErrExpressionCheck].
func (*ExpressionError) Is(target error) bool {
	return target == ErrExpressionCheck
}

// ExpressionErrors returns every [*ExpressionError] in err, including those
// joined by [Engine.CompileAll], in rule order.
func ExpressionErrors(err error) []*ExpressionError {
	var out []*ExpressionError
	var walk func(error)
	walk = func(err error) {
		if err == nil {
			return
		}
		if ee, ok := err.(*ExpressionError); ok {
			out = append(out, ee)
			return
		}
		switch u := err.(type) {
		case interface{ Unwrap() []error }:
			for _, inner := range u.Unwrap() {
				walk(inner)
			}
		case interface{ Unwrap() error }:
			walk(u.Unwrap())
		}
	}
	walk(err)
	return out
}
