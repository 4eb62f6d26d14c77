package cmd

import (
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

var listSteps bool

var listCmd = &cobra.Command{
	Use:   "list <file|directory>",
	Short: "List jobs discovered in suite files",
	Long: `List the jobs in the given suite files or directories without
executing anything.

Examples:
  flowright list suite.json
  flowright list ./suites/ --steps`,
	Args: cobra.MinimumNArgs(1),
	RunE: listCommand,
}

func init() {
	listCmd.Flags().BoolVar(&listSteps, "steps", false, "show the steps of each job")
}

func listCommand(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		return fmt.Errorf("no suite files found")
	}

	out := cmd.OutOrStdout()
	bold := color.New(color.Bold)
	dim := color.New(color.Faint)

	total := 0
	for _, file := range files {
		jobs, err := loadJobs([]string{file})
		if err != nil {
			return err
		}

		bold.Fprintln(out, file)
		for _, job := range jobs {
			fmt.Fprintf(out, "  %s (%d steps)\n", job.Name, len(job.Steps))
			if listSteps {
				for i, step := range job.Steps {
					dim.Fprintf(out, "    %d. %s\n", i+1, describeStep(step))
				}
			}
			total++
		}
	}

	fmt.Fprintf(out, "\n%d job(s) in %d file(s)\n", total, len(files))
	return nil
}

func describeStep(step *parser.Step) string {
	switch {
	case step.URL != "":
		return fmt.Sprintf("%s %s", step.Action, step.URL)
	case len(step.Selectors) > 0:
		return fmt.Sprintf("%s %s", step.Action, step.Selectors[0])
	case step.Value != "":
		return fmt.Sprintf("%s %q", step.Action, step.Value)
	default:
		return step.Action
	}
}
