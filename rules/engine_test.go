// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package rules_test

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/urinorm/config"
	"github.com/stacklok/urinorm/rules"
	"github.com/stacklok/urinorm/uri"
)

func inspect(t *testing.T, p config.Personality, target string) *uri.Result {
	t.Helper()

	cfg, err := config.ForPersonality(p)
	require.NoError(t, err)
	n, err := uri.NewNormalizer(cfg)
	require.NoError(t, err)

	res, err := n.Inspect(uri.Request{Target: []byte(target)})
	require.NoError(t, err)
	return res
}

func TestEngine_Compile_ValidExpressions(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()

	tests := []struct {
		name string
		expr string
	}{
		{"normalized path prefix", `uri.path.startsWith("/admin")`},
		{"raw and normalized differ", `raw.path != uri.path`},
		{"anomaly membership", `"path_encoded_nul" in flags`},
		{"expected status", `expected_status == 404`},
		{"optional component", `has(uri.query) && uri.query.contains("select")`},
		{"port number", `uri.port_number > 1024`},
		{"dynamic result", `uri["hostname"]`},
		{"true literal", `true`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cr, err := engine.Compile(rules.Rule{Name: tt.name, Expression: tt.expr})
			require.NoError(t, err)
			assert.Equal(t, tt.expr, cr.Rule().Expression)
		})
	}
}

func TestEngine_Compile_Errors(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()

	t.Run("syntax error", func(t *testing.T) {
		t.Parallel()
		_, err := engine.Compile(rules.Rule{Name: "broken", Expression: `uri.path ==`})

		var exprErr *rules.ExpressionError
		require.ErrorAs(t, err, &exprErr)
		assert.Equal(t, "broken", exprErr.Rule)
		assert.Equal(t, `uri.path ==`, exprErr.Expression)
		assert.Equal(t, rules.StageParse, exprErr.Stage)
		require.NotEmpty(t, exprErr.Issues)
		assert.Equal(t, 1, exprErr.Issues[0].Line)
		assert.ErrorIs(t, err, rules.ErrExpressionCheck)
		assert.Contains(t, err.Error(), `rule "broken" failed parse: 1:`)

		data, jerr := json.Marshal(exprErr)
		require.NoError(t, jerr)
		assert.Contains(t, string(data), `"stage":"parse"`)
	})

	t.Run("unknown variable", func(t *testing.T) {
		t.Parallel()
		_, err := engine.Compile(rules.Rule{Name: "typo", Expression: `url.path == "/"`})

		var exprErr *rules.ExpressionError
		require.ErrorAs(t, err, &exprErr)
		assert.Equal(t, "typo", exprErr.Rule)
		assert.Equal(t, rules.StageCheck, exprErr.Stage)
		require.NotEmpty(t, exprErr.Issues)
		assert.Contains(t, exprErr.Issues[0].Message, "url")
		assert.ErrorIs(t, err, rules.ErrExpressionCheck)
	})

	t.Run("non-boolean result", func(t *testing.T) {
		t.Parallel()
		_, err := engine.Compile(rules.Rule{Name: "count", Expression: `size(flags)`})
		require.ErrorIs(t, err, rules.ErrInvalidResult)
	})

	t.Run("expression too long", func(t *testing.T) {
		t.Parallel()
		short := rules.NewEngine().WithMaxExpressionLength(10)
		_, err := short.Compile(rules.Rule{Name: "long", Expression: strings.Repeat("true && ", 5) + "true"})
		require.ErrorIs(t, err, rules.ErrExpressionCheck)
	})

	t.Run("invalid rules", func(t *testing.T) {
		t.Parallel()
		for _, r := range []rules.Rule{
			{Expression: "true"},
			{Name: "empty"},
			{Name: "ok-status", Expression: "true", Status: http.StatusOK},
		} {
			_, err := engine.Compile(r)
			require.ErrorIs(t, err, rules.ErrInvalidRule)
		}
	})
}

func TestEngine_Check(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()
	require.NoError(t, engine.Check(`"host_invalid" in flags`))
	require.Error(t, engine.Check(`flags.`))
}

func TestEngine_CompileAll(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()

	set, err := engine.CompileAll([]rules.Rule{
		{Name: "a", Expression: "true"},
		{Name: "b", Expression: "false"},
	})
	require.NoError(t, err)
	assert.Equal(t, 2, set.Len())

	_, err = engine.CompileAll([]rules.Rule{
		{Name: "a", Expression: "true"},
		{Name: "a", Expression: "false"},
		{Name: "c", Expression: "nope("},
		{Name: "d", Expression: "size(flags)"},
		{Name: "e", Expression: "missing == 1"},
	})
	require.ErrorIs(t, err, rules.ErrInvalidRule)
	require.ErrorIs(t, err, rules.ErrInvalidResult)

	exprErrs := rules.ExpressionErrors(err)
	require.Len(t, exprErrs, 2, "every failing rule is reported")
	assert.Equal(t, "c", exprErrs[0].Rule)
	assert.Equal(t, rules.StageParse, exprErrs[0].Stage)
	assert.Equal(t, "e", exprErrs[1].Rule)
	assert.Equal(t, rules.StageCheck, exprErrs[1].Stage)

	assert.Empty(t, rules.ExpressionErrors(nil))
	assert.Empty(t, rules.ExpressionErrors(errors.New("other")))
}

func TestCompiledRule_Matches(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()

	tests := []struct {
		name        string
		personality config.Personality
		target      string
		expr        string
		want        bool
	}{
		{
			name:        "traversal into a protected directory",
			personality: config.PersonalityIIS51,
			target:      `/public/..\ADMIN/users`,
			expr:        `uri.path.startsWith("/admin") && !raw.path.startsWith("/admin")`,
			want:        true,
		},
		{
			name:        "plain request to a protected directory",
			personality: config.PersonalityIIS51,
			target:      "/admin/users",
			expr:        `uri.path.startsWith("/admin") && !raw.path.startsWith("/admin")`,
			want:        false,
		},
		{
			name:        "anomaly flag",
			personality: config.PersonalityApache2,
			target:      "/a%2fb",
			expr:        `"path_encoded_separator" in flags && expected_status == 404`,
			want:        true,
		},
		{
			name:        "missing component",
			personality: config.PersonalityGeneric,
			target:      "/a",
			expr:        `has(uri.query)`,
			want:        false,
		},
		{
			name:        "normalized query",
			personality: config.PersonalityGeneric,
			target:      "/a?id=%31%20or%201",
			expr:        `uri.query == "id=1%20or%201"`,
			want:        true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cr, err := engine.Compile(rules.Rule{Name: "r", Expression: tt.expr})
			require.NoError(t, err)

			got, err := cr.Matches(inspect(t, tt.personality, tt.target))
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestCompiledRule_Matches_Errors(t *testing.T) {
	t.Parallel()

	engine := rules.NewEngine()
	res := inspect(t, config.PersonalityGeneric, "/a")

	t.Run("absent key", func(t *testing.T) {
		t.Parallel()
		cr, err := engine.Compile(rules.Rule{Name: "q", Expression: `uri.query == "x"`})
		require.NoError(t, err)
		_, err = cr.Matches(res)
		require.ErrorIs(t, err, rules.ErrEvaluation)
	})

	t.Run("dynamic non-boolean", func(t *testing.T) {
		t.Parallel()
		cr, err := engine.Compile(rules.Rule{Name: "p", Expression: `uri.path`})
		require.NoError(t, err)
		_, err = cr.Matches(res)
		require.ErrorIs(t, err, rules.ErrInvalidResult)
	})

	t.Run("cost limit", func(t *testing.T) {
		t.Parallel()
		cheap := rules.NewEngine().WithCostLimit(1)
		cr, err := cheap.Compile(rules.Rule{
			Name:       "expensive",
			Expression: `[1, 2, 3, 4, 5].all(x, [1, 2, 3, 4, 5].all(y, x + y > 0))`,
		})
		require.NoError(t, err)
		_, err = cr.Matches(res)
		require.ErrorIs(t, err, rules.ErrEvaluation)
	})
}

func TestRuleSet_Evaluate(t *testing.T) {
	t.Parallel()

	set, err := rules.NewEngine().CompileAll([]rules.Rule{
		{Name: "nul", Expression: `"path_encoded_nul" in flags`, Status: http.StatusBadRequest},
		{Name: "cmd", Expression: `uri.path.endsWith("cmd.exe")`},
	})
	require.NoError(t, err)

	match, err := set.Evaluate(inspect(t, config.PersonalityIIS51, "/scripts/..%c0%af../winnt/system32/cmd.exe"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "cmd", match.Rule.Name)
	assert.Equal(t, http.StatusForbidden, match.Status())

	match, err = set.Evaluate(inspect(t, config.PersonalityIIS51, "/a%00.txt"))
	require.NoError(t, err)
	require.NotNil(t, match)
	assert.Equal(t, "nul", match.Rule.Name)
	assert.Equal(t, http.StatusBadRequest, match.Status())

	match, err = set.Evaluate(inspect(t, config.PersonalityIIS51, "/index.html"))
	require.NoError(t, err)
	assert.Nil(t, match)

	var empty *rules.RuleSet
	match, err = empty.Evaluate(inspect(t, config.PersonalityIIS51, "/"))
	require.NoError(t, err)
	assert.Nil(t, match)
	assert.Zero(t, empty.Len())
}
