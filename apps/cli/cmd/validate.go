package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

var validateCmd = &cobra.Command{
	Use:   "validate <file|directory>",
	Short: "Validate suite files without executing them",
	Long: `Validate suite files against the step schema without launching
a browser.

Examples:
  flowright validate suite.json
  flowright validate ./suites/`,
	Args: cobra.MinimumNArgs(1),
	RunE: validateCommand,
}

func validateCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no suite files found")
	}

	hasErrors := false
	for _, file := range files {
		data, err := os.ReadFile(file)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}

		issues, err := parser.Validate(data)
		if err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		if len(issues) > 0 {
			hasErrors = true
			fmt.Fprintf(cmd.OutOrStderr(), "Invalid: %s\n", file)
			for _, issue := range issues {
				fmt.Fprintf(cmd.OutOrStderr(), "  - %v\n", issue)
			}
			continue
		}

		// schema-valid payloads must also normalize into jobs
		if _, err := parser.Parse(data); err != nil {
			fmt.Fprintf(cmd.OutOrStderr(), "Error in %s: %v\n", file, err)
			hasErrors = true
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Valid: %s\n", file)
	}

	if hasErrors {
		return fmt.Errorf("validation failed")
	}
	return nil
}
