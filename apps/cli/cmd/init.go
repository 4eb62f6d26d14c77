package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var initForce bool

var initCmd = &cobra.Command{
	Use:   "init [directory]",
	Short: "Scaffold a new test project",
	Long: `Create a starter project: a config file, an example suite, an
object repository directory and a keywords directory.

Examples:
  flowright init
  flowright init ./e2e --force`,
	Args: cobra.MaximumNArgs(1),
	RunE: initCommand,
}

func init() {
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "overwrite existing files")
}

const initConfigJSON = `{
  "browser": "chrome",
  "headless": true,
  "defaultTimeout": 5000,
  "navigationTimeout": 30000,
  "assertionTimeout": 5000,
  "concurrency": 1,
  "outputDir": "results",
  "objectsDir": "objects",
  "keywordsDir": "keywords",
  "screenshotPolicy": "failure"
}
`

const initSuiteJSON = `[
  {
    "name": "example login",
    "steps": [
      { "action": "goto", "url": "https://example.com/login" },
      { "action": "fill", "selectors": ["$login/username"], "object-folder-id": "login", "value": "{{GlobalVariables.username}}" },
      { "action": "fill", "selectors": ["$login/password"], "object-folder-id": "login", "value": "{{GlobalVariables.password}}" },
      { "action": "click", "selectors": ["$login/submit"], "object-folder-id": "login" },
      { "action": "verifyPageTitle", "value": "Dashboard" }
    ]
  }
]
`

const initLocatorsJSON = `{
  "$login/username": { "selectors": ["#username", "input[name='username']"] },
  "$login/password": { "selectors": ["#password", "input[name='password']"] },
  "$login/submit": { "selectors": ["button[type='submit']", "#login-btn"] }
}
`

const initKeywordYAML = `name: loginAs
description: Fill the login form and submit.
steps:
  - action: fill
    selectors: ["$login/username"]
    object-folder-id: login
    value: "{{GlobalVariables.username}}"
  - action: fill
    selectors: ["$login/password"]
    object-folder-id: login
    value: "{{GlobalVariables.password}}"
  - action: click
    selectors: ["$login/submit"]
    object-folder-id: login
`

func initCommand(cmd *cobra.Command, args []string) error {
	dir := "."
	if len(args) > 0 {
		dir = args[0]
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory: %w", err)
	}

	files := []struct {
		path    string
		content string
	}{
		{"flowright.config.json", initConfigJSON},
		{"suite.json", initSuiteJSON},
		{filepath.Join("objects", "login", "locators.json"), initLocatorsJSON},
		{filepath.Join("keywords", "loginAs.keyword.yaml"), initKeywordYAML},
	}

	out := cmd.OutOrStdout()
	for _, f := range files {
		path := filepath.Join(dir, f.path)
		if _, err := os.Stat(path); err == nil && !initForce {
			color.Yellow("  skipped %s (exists, use --force to overwrite)", path)
			continue
		}
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return fmt.Errorf("failed to create %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, []byte(f.content), 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}
		color.Green("  created %s", path)
	}

	fmt.Fprintln(out)
	fmt.Fprintln(out, "Next steps:")
	fmt.Fprintf(out, "  cd %s\n", dir)
	fmt.Fprintln(out, "  flowright validate suite.json")
	fmt.Fprintln(out, "  echo '{\"username\":\"demo\",\"password\":\"demo\"}' > profile.json")
	fmt.Fprintln(out, "  flowright run suite.json --profile-json profile.json")
	return nil
}
