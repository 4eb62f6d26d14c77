package cmd

// Exit codes for the flowright CLI
const (
	// ExitSuccess indicates all jobs passed
	ExitSuccess = 0

	// ExitJobFailure indicates one or more jobs failed
	ExitJobFailure = 1

	// ExitParseError indicates a suite file parsing error
	ExitParseError = 2

	// ExitConfigError indicates a configuration error
	ExitConfigError = 3

	// ExitLaunchError indicates the browser could not be launched
	ExitLaunchError = 4

	// ExitUsageError indicates invalid CLI usage
	ExitUsageError = 64
)
