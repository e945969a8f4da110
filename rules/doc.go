// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

/*
Package rules evaluates inspection rules against normalized request-targets.

A rule is a CEL expression over the outcome of [uri.Normalizer.Inspect]. Rules
see both the raw and the normalized decomposition, so a rule can match on what
a web server will act on while still inspecting what appeared on the wire.

# Variables

Expressions are checked against these variables:

	raw              map(string, dyn)  components as received
	uri              map(string, dyn)  normalized components
	flags            list(string)      anomaly names, e.g. "path_encoded_nul"
	expected_status  int               expected backend status, 0 if none

Both component maps have the string keys scheme, username, password, hostname,
port, path, query and fragment, present only when the component was, and the
int key port_number.

# Basic Usage

	engine := rules.NewEngine()

	set, err := engine.CompileAll([]rules.Rule{{
	    Name:       "admin-traversal",
	    Expression: `uri.path.startsWith("/admin") && !raw.path.startsWith("/admin")`,
	    Status:     http.StatusForbidden,
	}})
	if err != nil {
	    // handle compilation error
	}

	match, err := set.Evaluate(result)
	if match != nil {
	    // match.Rule.Name matched
	}

# Rule Files

[Parse] and [Load] read rules from YAML:

	rules:
	  - name: encoded-nul
	    expression: '"path_encoded_nul" in flags'
	    status: 400

# Error Handling

A rule whose expression fails to parse or type-check is reported as an
[*ExpressionError] naming the rule, the failing [Stage] and every [Issue] with
its line and column. [Engine.CompileAll] joins the errors of all failing
rules; [ExpressionErrors] recovers them in rule order:

	for _, e := range rules.ExpressionErrors(err) {
	    for _, issue := range e.Issues {
	        fmt.Printf("%s (%s) %s\n", e.Rule, e.Stage, issue)
	    }
	}

# DoS Protection

Expressions longer than [DefaultMaxExpressionLength] are rejected and
evaluation is bounded by [DefaultCostLimit]; both can be changed with
[Engine.WithMaxExpressionLength] and [Engine.WithCostLimit].

Engines and compiled rules are safe for concurrent use.
*/
package rules
