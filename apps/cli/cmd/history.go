package cmd

import (
	"fmt"
	"text/tabwriter"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/avishekjana-89/flowright/packages/history"
)

var (
	historyDBPath string
	historyLimit  int
	historyByJob  bool
)

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "Show past runs recorded by --history-db",
	Long: `Show previously recorded runs from a history database.

Examples:
  flowright history --history-db results/history.db
  flowright history --history-db results/history.db --jobs --limit 5`,
	Args: cobra.NoArgs,
	RunE: historyCommand,
}

func init() {
	historyCmd.Flags().StringVar(&historyDBPath, "history-db", getEnvString("FLOWRIGHT_HISTORY_DB", ""), "path to the history database")
	historyCmd.Flags().IntVarP(&historyLimit, "limit", "n", 10, "maximum entries to show")
	historyCmd.Flags().BoolVar(&historyByJob, "jobs", false, "aggregate per job name instead of listing runs")
}

func historyCommand(cmd *cobra.Command, args []string) error {
	if historyDBPath == "" {
		return fmt.Errorf("--history-db is required (or set FLOWRIGHT_HISTORY_DB)")
	}

	recorder, err := history.Open(historyDBPath)
	if err != nil {
		return err
	}
	defer recorder.Close()

	out := cmd.OutOrStdout()
	w := tabwriter.NewWriter(out, 2, 4, 2, ' ', 0)

	if historyByJob {
		stats, err := recorder.JobHistory(cmd.Context(), historyLimit)
		if err != nil {
			return err
		}
		if len(stats) == 0 {
			fmt.Fprintln(out, "No jobs recorded yet.")
			return nil
		}

		fmt.Fprintln(w, "JOB\tRUNS\tPASSES\tAVG\tLAST ERROR")
		for _, s := range stats {
			fmt.Fprintf(w, "%s\t%d\t%d\t%dms\t%s\n", s.Name, s.Runs, s.Passes, s.AvgMillis, s.LastError)
		}
		return w.Flush()
	}

	runs, err := recorder.Recent(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Fprintln(out, "No runs recorded yet.")
		return nil
	}

	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()

	fmt.Fprintln(w, "RUN\tSTARTED\tDURATION\tPASSED\tFAILED")
	for _, r := range runs {
		failed := fmt.Sprintf("%d", r.Failed)
		if r.Failed > 0 {
			failed = red(failed)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			r.ID,
			r.StartedAt.Format("2006-01-02 15:04:05"),
			r.FinishedAt.Sub(r.StartedAt).Round(time.Millisecond),
			green(fmt.Sprintf("%d", r.Passed)),
			failed)
	}
	return w.Flush()
}
