// SPDX-FileCopyrightText: Copyright 2026 Stacklok, Inc.
// SPDX-License-Identifier: Apache-2.0

package rules_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/stacklok/urinorm/rules"
)

const ruleDoc = `
rules:
  - name: encoded-nul
    expression: '"path_encoded_nul" in flags'
    status: 400
  - name: admin
    expression: uri.path.startsWith("/admin")
`

func TestParse(t *testing.T) {
	t.Parallel()

	t.Run("valid document", func(t *testing.T) {
		t.Parallel()
		got, err := rules.Parse([]byte(ruleDoc))
		require.NoError(t, err)
		assert.Equal(t, []rules.Rule{
			{Name: "encoded-nul", Expression: `"path_encoded_nul" in flags`, Status: 400},
			{Name: "admin", Expression: `uri.path.startsWith("/admin")`},
		}, got)
	})

	t.Run("empty document", func(t *testing.T) {
		t.Parallel()
		got, err := rules.Parse(nil)
		require.NoError(t, err)
		assert.Empty(t, got)
	})

	t.Run("rule without expression", func(t *testing.T) {
		t.Parallel()
		_, err := rules.Parse([]byte("rules:\n  - name: x\n"))
		require.ErrorIs(t, err, rules.ErrInvalidRule)
	})

	t.Run("malformed YAML", func(t *testing.T) {
		t.Parallel()
		_, err := rules.Parse([]byte("rules: [\n"))
		require.ErrorIs(t, err, rules.ErrInvalidRule)
	})
}

func TestLoad(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte(ruleDoc), 0o600))

	got, err := rules.Load(path)
	require.NoError(t, err)
	assert.Len(t, got, 2)

	_, err = rules.Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
