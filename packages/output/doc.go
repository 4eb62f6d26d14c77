// Package output provides formatters for displaying suite results.
//
// Supported output formats:
//   - Console: Human-readable colored terminal output
//   - JSON: Machine-readable summary artifact written into the run directory
//   - JUnit: JUnit XML format for CI integration
package output
