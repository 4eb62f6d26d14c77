package cmd

import (
	"bytes"
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
	"github.com/avishekjana-89/flowright/packages/keyword"
)

func newTestCommand(out io.Writer) *cobra.Command {
	c := &cobra.Command{}
	c.SetOut(out)
	c.SetErr(out)
	return c
}

func TestKeywordsCommandListsBuiltinsAndCustom(t *testing.T) {
	dir := t.TempDir()
	def := `name: fillLogin
description: Fill both login fields.
steps:
  - action: fill
    selectors: ["#user"]
    value: "{{GlobalVariables.username}}"
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "fillLogin.keyword.yaml"), []byte(def), 0o644))

	prevDir, prevCfg := kwListDirFlag, keywordsConfigFile
	kwListDirFlag, keywordsConfigFile = dir, ""
	t.Cleanup(func() { kwListDirFlag, keywordsConfigFile = prevDir, prevCfg })

	var buf bytes.Buffer
	require.NoError(t, keywordsCommand(newTestCommand(&buf), nil))

	out := buf.String()
	assert.Contains(t, out, "click")
	assert.Contains(t, out, "verifyElementText")
	assert.Contains(t, out, "fillLogin - Fill both login fields.")
}

func TestInitCommandScaffoldsRunnableProject(t *testing.T) {
	dir := t.TempDir()

	prevForce := initForce
	initForce = false
	t.Cleanup(func() { initForce = prevForce })

	var buf bytes.Buffer
	require.NoError(t, initCommand(newTestCommand(&buf), []string{dir}))

	for _, f := range []string{
		"flowright.config.json",
		"suite.json",
		filepath.Join("objects", "login", "locators.json"),
		filepath.Join("keywords", "loginAs.keyword.yaml"),
	} {
		_, err := os.Stat(filepath.Join(dir, f))
		require.NoError(t, err, f)
	}

	_, err := config.LoadConfig(filepath.Join(dir, "flowright.config.json"))
	require.NoError(t, err)

	jobs, err := parser.ParseFile(filepath.Join(dir, "suite.json"))
	require.NoError(t, err)
	require.Len(t, jobs, 1)

	// the scaffolded placeholders must resolve against a plain profile
	scope := vars.NewScope(map[string]string{"username": "demo", "password": "secret"})
	resolved := scope.SubstituteStep(jobs[0].Steps[1])
	assert.Equal(t, "demo", resolved.Value)
	for _, step := range jobs[0].Steps {
		got := scope.SubstituteStep(step)
		assert.NotContains(t, got.Value, "{{", "step %q left an unresolved placeholder", step.Action)
	}

	registry := keyword.NewRegistry()
	noop := func(context.Context, *parser.Step, *vars.Scope) (any, error) { return nil, nil }
	result := keyword.NewLoader(registry, filepath.Join(dir, "keywords"), noop).LoadAll()
	assert.Empty(t, result.Errors)
	assert.Contains(t, result.Loaded, "loginAs")
}
