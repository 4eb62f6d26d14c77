package output

import (
	"fmt"
	"io"
	"os"

	"github.com/fatih/color"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

type ConsoleFormatter struct {
	writer  io.Writer
	verbose bool
	quiet   bool
	noColor bool
}

type ConsoleOption func(*ConsoleFormatter)

func NewConsoleFormatter(opts ...ConsoleOption) *ConsoleFormatter {
	f := &ConsoleFormatter{
		writer: os.Stdout,
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.noColor {
		color.NoColor = true
	}
	return f
}

func WithWriter(w io.Writer) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.writer = w
	}
}

func WithVerbose(v bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.verbose = v
	}
}

func WithQuiet(q bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.quiet = q
	}
}

func WithNoColor(nc bool) ConsoleOption {
	return func(f *ConsoleFormatter) {
		f.noColor = nc
	}
}

func (f *ConsoleFormatter) FormatHeader(version string) {
	if f.quiet {
		return
	}
	bold := color.New(color.Bold).SprintFunc()
	fmt.Fprintf(f.writer, "%s %s\n", bold("flowright"), version)
}

func (f *ConsoleFormatter) FormatResult(result *runner.SuiteResult) {
	green := color.New(color.FgGreen).SprintFunc()
	red := color.New(color.FgRed).SprintFunc()
	cyan := color.New(color.FgCyan).SprintFunc()
	bold := color.New(color.Bold).SprintFunc()

	if !f.quiet {
		fmt.Fprintf(f.writer, "\n%s\n\n", bold("Run: "+result.RunID))
	}

	for _, jr := range result.Jobs {
		symbol := green("✓")
		if !jr.OK {
			symbol = red("✗")
		}
		fmt.Fprintf(f.writer, "  %s %s %s\n", symbol, jr.Name, cyan(fmt.Sprintf("(%dms)", jr.Duration.Milliseconds())))

		if !jr.OK {
			for _, sr := range jr.Steps {
				if sr.OK {
					continue
				}
				fmt.Fprintf(f.writer, "    %s step %d (%s)\n", red("→"), sr.Index+1, sr.Action)
				if sr.Error != "" {
					fmt.Fprintf(f.writer, "      %s\n", sr.Error)
				}
				if sr.Screenshot != "" {
					fmt.Fprintf(f.writer, "      screenshot: %s\n", sr.Screenshot)
				}
			}
			if jr.Error != "" && len(jr.Steps) == 0 {
				fmt.Fprintf(f.writer, "    %s %s\n", red("→"), jr.Error)
			}
		}

		if f.verbose && jr.OK {
			for _, sr := range jr.Steps {
				fmt.Fprintf(f.writer, "    %s step %d (%s) %s\n", green("·"), sr.Index+1, sr.Action, cyan(fmt.Sprintf("(%dms)", sr.Duration.Milliseconds())))
			}
		}
	}

	fmt.Fprintf(f.writer, "\n")
	fmt.Fprintf(f.writer, "Jobs:  ")
	if result.Passed > 0 {
		fmt.Fprintf(f.writer, "%s, ", green(fmt.Sprintf("%d passed", result.Passed)))
	}
	if result.Failed > 0 {
		fmt.Fprintf(f.writer, "%s, ", red(fmt.Sprintf("%d failed", result.Failed)))
	}
	fmt.Fprintf(f.writer, "%d total\n", len(result.Jobs))
	fmt.Fprintf(f.writer, "Time:  %dms\n", result.Duration().Milliseconds())

	if f.verbose && len(result.Jobs) > 1 {
		stats := result.Timings()
		fmt.Fprintf(f.writer, "Job durations: p50=%dms p95=%dms p99=%dms max=%dms\n",
			stats.P50.Milliseconds(), stats.P95.Milliseconds(), stats.P99.Milliseconds(), stats.Max.Milliseconds())
	}
	fmt.Fprintf(f.writer, "\n")
}

func (f *ConsoleFormatter) FormatError(err error) {
	red := color.New(color.FgRed).SprintFunc()
	fmt.Fprintf(f.writer, "%s %v\n", red("Error:"), err)
}
