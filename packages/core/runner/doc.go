// Package runner executes browser test jobs and manages suite execution.
//
// It provides functionality for:
//   - Running a suite of jobs with bounded concurrency
//   - Per-job isolation of variables, locator caches and browser state
//   - Fail-fast step execution with screenshot capture policies
//   - Suite-level timing statistics
//
// The runner is decoupled from the browser layer through the StepExecutor
// and JobSession interfaces, which keeps suite orchestration testable
// without a real browser.
package runner
