package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/avishekjana-89/flowright/packages/browser"
	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/runner"
	"github.com/avishekjana-89/flowright/packages/history"
	"github.com/avishekjana-89/flowright/packages/keyword"
	"github.com/avishekjana-89/flowright/packages/locator"
	"github.com/avishekjana-89/flowright/packages/notify"
	"github.com/avishekjana-89/flowright/packages/output"
)

var runCmd = &cobra.Command{
	Use:   "run <file|directory|->",
	Short: "Run browser test jobs from suite files",
	Long: `Run browser test jobs defined in JSON suite files. Pass "-" to
read a suite from stdin.

Examples:
  flowright run suite.json
  flowright run ./suites/ --concurrency 5
  flowright run suite.json --browser chromium --screenshot every
  flowright run suite.json --profile-json staging.json --watch
  cat suite.json | flowright run -`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCommand,
}

const (
	// WatchDebounceDelay is the debounce delay for file watch events
	WatchDebounceDelay = 300 * time.Millisecond

	// DefaultOutDir receives run artifacts when no output directory is set
	DefaultOutDir = "results"
)

var (
	configFlag      string
	profileJSONFlag string
	outDirFlag      string
	concurrencyFlag int
	launchRateFlag  float64
	browserFlag     string
	browserPathFlag string
	headlessFlag    bool
	objectsDirFlag  string
	keywordsDirFlag string
	screenshotFlag  string
	junitFlag       string
	historyDBFlag   string
	slackFlag       string
	teamsFlag       string
	notifyOnFlag    string
	watchFlag       bool
	verboseFlag     int
	quietFlag       bool
	noColorFlag     bool
)

func init() {
	runCmd.Flags().StringVar(&configFlag, "config", getEnvString("FLOWRIGHT_CONFIG", ""), "Path to config file (env: FLOWRIGHT_CONFIG)")
	runCmd.Flags().StringVar(&profileJSONFlag, "profile-json", getEnvString("FLOWRIGHT_PROFILE_JSON", ""), "JSON file with global variables for {{GlobalVariables.*}} (env: FLOWRIGHT_PROFILE_JSON)")
	runCmd.Flags().StringVarP(&outDirFlag, "out-dir", "o", "", "Directory for run artifacts (default: results)")
	runCmd.Flags().IntVarP(&concurrencyFlag, "concurrency", "c", getEnvInt("FLOWRIGHT_CONCURRENCY", 0), "Number of jobs to run in parallel (1-20) (env: FLOWRIGHT_CONCURRENCY)")
	runCmd.Flags().Float64Var(&launchRateFlag, "launch-rate", 0, "Max browser launches per second (0 = unlimited)")
	runCmd.Flags().StringVarP(&browserFlag, "browser", "b", "", "Browser: chrome, chromium, firefox, webkit")
	runCmd.Flags().StringVar(&browserPathFlag, "browser-path", "", "Path to the browser binary")
	runCmd.Flags().BoolVar(&headlessFlag, "headless", true, "Run the browser headless")
	runCmd.Flags().StringVar(&objectsDirFlag, "objects-dir", "", "Directory holding locator object folders")
	runCmd.Flags().StringVar(&keywordsDirFlag, "keywords-dir", "", "Directory holding custom keyword definitions")
	runCmd.Flags().StringVar(&screenshotFlag, "screenshot", "", "Screenshot policy: failure, every, off")
	runCmd.Flags().StringVar(&junitFlag, "junit", getEnvString("FLOWRIGHT_JUNIT", ""), "Write a JUnit XML report to this path (env: FLOWRIGHT_JUNIT)")
	runCmd.Flags().StringVar(&historyDBFlag, "history-db", getEnvString("FLOWRIGHT_HISTORY_DB", ""), "Record results into this SQLite database (env: FLOWRIGHT_HISTORY_DB)")
	runCmd.Flags().StringVar(&slackFlag, "slack-webhook", getEnvString("FLOWRIGHT_SLACK_WEBHOOK", ""), "Post the run summary to this Slack webhook (env: FLOWRIGHT_SLACK_WEBHOOK)")
	runCmd.Flags().StringVar(&teamsFlag, "teams-webhook", getEnvString("FLOWRIGHT_TEAMS_WEBHOOK", ""), "Post the run summary to this Teams webhook (env: FLOWRIGHT_TEAMS_WEBHOOK)")
	runCmd.Flags().StringVar(&notifyOnFlag, "notify-on", getEnvString("FLOWRIGHT_NOTIFY_ON", ""), "When to notify: always, failure, success (default: failure)")
	runCmd.Flags().BoolVarP(&watchFlag, "watch", "w", false, "Watch suite and keyword files for changes and re-run")
	runCmd.Flags().CountVarP(&verboseFlag, "verbose", "v", "Verbose output")
	runCmd.Flags().BoolVarP(&quietFlag, "quiet", "q", getEnvBool("FLOWRIGHT_QUIET", false), "Suppress all output except results and errors (env: FLOWRIGHT_QUIET)")
	runCmd.Flags().BoolVar(&noColorFlag, "no-color", getEnvBool("FLOWRIGHT_NO_COLOR", false), "Disable colored output (env: FLOWRIGHT_NO_COLOR)")
}

// Environment variable helpers
func getEnvString(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvBool(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		return val == "true" || val == "1" || val == "yes"
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func runCommand(cmd *cobra.Command, args []string) error {
	cfg, err := config.LoadConfig(configFlag)
	if err != nil {
		fmt.Fprintf(cmd.OutOrStderr(), "Error: %v\n", err)
		os.Exit(ExitConfigError)
	}
	applyFlagOverrides(cmd, cfg)

	switch cfg.ScreenshotPolicy {
	case config.ScreenshotOnFailure, config.ScreenshotEvery, config.ScreenshotOff:
	default:
		fmt.Fprintf(cmd.OutOrStderr(), "Error: invalid screenshot policy %q (use failure, every or off)\n", cfg.ScreenshotPolicy)
		os.Exit(ExitUsageError)
	}

	outDir := cfg.OutputDir
	if outDirFlag != "" {
		outDir = outDirFlag
	}
	if outDir == "" {
		outDir = DefaultOutDir
	}

	formatter := output.NewConsoleFormatter(
		output.WithVerbose(verboseFlag > 0),
		output.WithQuiet(quietFlag),
		output.WithNoColor(cfg.GetNoColor() || noColorFlag),
	)
	formatter.FormatHeader(version)

	globals, err := loadProfile(profileJSONFlag)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitConfigError)
	}

	fromStdin := len(args) == 1 && args[0] == "-"

	var suiteFiles []string
	loadAll := func() ([]*parser.Job, error) {
		if fromStdin {
			return loadJobsFromStdin(cmd.InOrStdin())
		}
		files, err := collectFiles(args)
		if err != nil {
			return nil, err
		}
		if len(files) == 0 {
			return nil, fmt.Errorf("no suite files found")
		}
		suiteFiles = files
		return loadJobs(files)
	}

	jobs, err := loadAll()
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitParseError)
	}

	launcher, err := browser.NewLauncher(cfg)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitLaunchError)
	}

	logf := func(format string, fmtArgs ...any) {
		if !quietFlag {
			fmt.Fprintf(os.Stderr, format+"\n", fmtArgs...)
		}
	}

	store := locator.NewStore(cfg.ObjectsDir, locator.WithLogf(logf))
	registry := keyword.NewRegistry()
	executor := browser.NewExecutor(cfg, launcher, store, registry, browser.WithExecutorLogf(logf))

	loader := keyword.NewLoader(registry, cfg.KeywordsDir, executor.RunStep, keyword.WithLoaderLogf(logf))
	loadResult := loader.LoadAll()
	for path, lerr := range loadResult.Errors {
		formatter.FormatError(fmt.Errorf("keyword %s: %w", path, lerr))
	}
	if verboseFlag > 0 && len(loadResult.Loaded) > 0 {
		fmt.Fprintf(cmd.OutOrStdout(), "Loaded keywords: %s\n", strings.Join(loadResult.Loaded, ", "))
	}

	notifyPolicy, err := notify.ParsePolicy(notifyOnFlag)
	if err != nil {
		formatter.FormatError(err)
		os.Exit(ExitUsageError)
	}
	notifier := notify.NewManager(notifyPolicy)
	if slackFlag != "" {
		notifier.AddNotifier(notify.NewSlackNotifier(slackFlag))
	}
	if teamsFlag != "" {
		notifier.AddNotifier(notify.NewTeamsNotifier(teamsFlag))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runSuite := func(jobs []*parser.Job) *runner.SuiteResult {
		runID := newRunID()
		runDir := filepath.Join(outDir, "suite_run_"+runID)
		if err := os.MkdirAll(runDir, 0o755); err != nil {
			formatter.FormatError(fmt.Errorf("creating run directory: %w", err))
			return nil
		}

		r := runner.New(executor, globals, runner.Options{
			RunID:       runID,
			RunDir:      runDir,
			Concurrency: cfg.Concurrency,
			LaunchRate:  cfg.LaunchRate,
			Screenshot:  cfg.ScreenshotPolicy,
			Logf:        logf,
		})

		suite, err := r.Run(ctx, jobs)
		if err != nil {
			formatter.FormatError(err)
		}
		if suite == nil {
			return nil
		}

		formatter.FormatResult(suite)

		if _, err := output.WriteJSONFile(runDir, suite); err != nil {
			formatter.FormatError(fmt.Errorf("writing summary: %w", err))
		}
		if err := output.WriteJobSummaries(suite); err != nil {
			formatter.FormatError(fmt.Errorf("writing job summaries: %w", err))
		}
		if junitFlag != "" {
			if err := output.WriteJUnitFile(junitFlag, suite); err != nil {
				formatter.FormatError(fmt.Errorf("writing junit report: %w", err))
			}
		}
		if historyDBFlag != "" {
			recordHistory(ctx, historyDBFlag, suite, formatter)
		}
		if err := notifier.Notify(notify.BuildSummary(suite)); err != nil {
			formatter.FormatError(fmt.Errorf("notification: %w", err))
		}
		return suite
	}

	suite := runSuite(jobs)

	if !watchFlag || fromStdin {
		if suite == nil || suite.Failed > 0 {
			os.Exit(ExitJobFailure)
		}
		return nil
	}

	// Watch mode: keyword definitions hot-reload independently of suite
	// file changes.
	go func() {
		if err := loader.Watch(ctx); err != nil && ctx.Err() == nil {
			logf("keyword watcher: %v", err)
		}
	}()

	return watchSuites(ctx, cmd, args, suiteFiles, formatter, func() {
		jobs, err := loadAll()
		if err != nil {
			formatter.FormatError(err)
			return
		}
		runSuite(jobs)
	})
}

func watchSuites(ctx context.Context, cmd *cobra.Command, args, files []string, formatter *output.ConsoleFormatter, rerun func()) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer watcher.Close()

	watchedDirs := make(map[string]bool)
	for _, file := range files {
		dir := filepath.Dir(file)
		if !watchedDirs[dir] {
			if err := watcher.Add(dir); err != nil {
				formatter.FormatError(fmt.Errorf("failed to watch %s: %w", dir, err))
			}
			watchedDirs[dir] = true
		}
	}
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err == nil && info.IsDir() {
			_ = filepath.Walk(arg, func(path string, info os.FileInfo, err error) error {
				if err != nil {
					return err
				}
				if info.IsDir() && !watchedDirs[path] {
					_ = watcher.Add(path)
					watchedDirs[path] = true
				}
				return nil
			})
		}
	}

	fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n\n")

	var debounceTimer *time.Timer
	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if !event.Has(fsnotify.Write) || !isSuiteFile(event.Name) {
				continue
			}
			if debounceTimer != nil {
				debounceTimer.Stop()
			}
			debounceTimer = time.AfterFunc(WatchDebounceDelay, func() {
				fmt.Fprintf(cmd.OutOrStdout(), "\n\nFile changed: %s\nRe-running jobs...\n\n", event.Name)
				rerun()
				fmt.Fprintf(cmd.OutOrStdout(), "\nWatching for changes... (press Ctrl+C to stop)\n")
			})

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			formatter.FormatError(fmt.Errorf("watcher error: %w", err))
		}
	}
}

// applyFlagOverrides layers explicitly set CLI flags over the file/env
// configuration.
func applyFlagOverrides(cmd *cobra.Command, cfg *config.Config) {
	f := cmd.Flags()
	if f.Changed("browser") {
		cfg.Browser = browserFlag
	}
	if f.Changed("browser-path") {
		cfg.BrowserPath = browserPathFlag
	}
	if f.Changed("headless") {
		cfg.Headless = config.BoolPtr(headlessFlag)
	}
	// concurrency defaults to FLOWRIGHT_CONCURRENCY, so a non-zero value
	// wins even when the flag itself was not passed
	if f.Changed("concurrency") || concurrencyFlag > 0 {
		cfg.Concurrency = concurrencyFlag
	}
	if f.Changed("launch-rate") {
		cfg.LaunchRate = launchRateFlag
	}
	if f.Changed("objects-dir") {
		cfg.ObjectsDir = objectsDirFlag
	}
	if f.Changed("keywords-dir") {
		cfg.KeywordsDir = keywordsDirFlag
	}
	if f.Changed("screenshot") {
		cfg.ScreenshotPolicy = screenshotFlag
	}
	if f.Changed("no-color") {
		cfg.NoColor = config.BoolPtr(noColorFlag)
	}
}

// loadProfile reads global variables from a JSON object file. Non-string
// scalars are stringified.
func loadProfile(path string) (map[string]string, error) {
	if path == "" {
		return nil, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading profile: %w", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("profile %s must be a JSON object: %w", path, err)
	}
	globals := make(map[string]string, len(raw))
	for k, v := range raw {
		globals[k] = fmt.Sprint(v)
	}
	return globals, nil
}

func recordHistory(ctx context.Context, path string, suite *runner.SuiteResult, formatter *output.ConsoleFormatter) {
	rec, err := history.Open(path)
	if err != nil {
		formatter.FormatError(fmt.Errorf("opening history database: %w", err))
		return
	}
	defer rec.Close()

	if err := rec.Record(ctx, suite); err != nil {
		formatter.FormatError(fmt.Errorf("recording run: %w", err))
	}
}

func newRunID() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
