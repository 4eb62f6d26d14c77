package cmd

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
	"github.com/avishekjana-89/flowright/packages/keyword"
)

var (
	keywordsConfigFile string
	kwListDirFlag      string
)

var keywordsCmd = &cobra.Command{
	Use:   "keywords",
	Short: "List built-in actions and loaded custom keywords",
	Long: `List every action a step may use: the built-in browser actions
plus the custom keywords found in the keywords directory.

Examples:
  flowright keywords
  flowright keywords --keywords-dir ./shared/keywords`,
	Args: cobra.NoArgs,
	RunE: keywordsCommand,
}

func init() {
	keywordsCmd.Flags().StringVar(&keywordsConfigFile, "config", "", "path to config file")
	keywordsCmd.Flags().StringVar(&kwListDirFlag, "keywords-dir", "", "directory of keyword definition files")
}

func keywordsCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(keywordsConfigFile)
	if err != nil {
		return err
	}
	dir := cfg.KeywordsDir
	if kwListDirFlag != "" {
		dir = kwListDirFlag
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	bold.Fprintln(out, "Built-in actions:")
	for _, name := range parser.BuiltinActions() {
		fmt.Fprintf(out, "  %s\n", name)
	}

	// load definitions for listing only, without a live browser behind them
	registry := keyword.NewRegistry()
	noop := func(context.Context, *parser.Step, *vars.Scope) (any, error) { return nil, nil }
	loader := keyword.NewLoader(registry, dir, noop)
	result := loader.LoadAll()

	entries := registry.List()
	fmt.Fprintln(out)
	bold.Fprintf(out, "Custom keywords (%s):\n", dir)
	if len(entries) == 0 {
		dim.Fprintln(out, "  none")
	}
	for _, e := range entries {
		if e.Meta.Description != "" {
			fmt.Fprintf(out, "  %s - %s\n", e.Name, e.Meta.Description)
		} else {
			fmt.Fprintf(out, "  %s\n", e.Name)
		}
		if e.Meta.Source != "" {
			dim.Fprintf(out, "    %s\n", e.Meta.Source)
		}
	}

	if len(result.Errors) > 0 {
		fmt.Fprintln(out)
		for file, loadErr := range result.Errors {
			color.Red("  skipped %s: %v", file, loadErr)
		}
	}
	return nil
}
