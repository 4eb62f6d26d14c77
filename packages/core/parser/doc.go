// Package parser provides the step and job model for flowright test input.
//
// Test input is a JSON document in one of three shapes:
//   - a single list of steps (one implicit job)
//   - a list of step lists (legacy batch form)
//   - a list of job objects {"name": ..., "steps": [...]}
//
// The parser normalizes all three into a list of jobs, and can validate a
// payload against the embedded JSON schema before execution.
package parser
