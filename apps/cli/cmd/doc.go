// Package cmd implements the flowright CLI commands using Cobra.
//
// Available commands:
//   - run: Execute browser test jobs from suite files
//   - validate: Check suite file structure without executing
//   - list: Display the jobs and steps defined in suite files
//   - keywords: Show built-in actions and loaded custom keywords
//   - history: Show recorded runs from the history database
//   - init: Create a new flowright project with example files
//   - version: Show flowright version information
//
// The CLI supports flags for concurrency, browser selection, screenshot
// policies, report output, and watch mode for development workflows.
package cmd
