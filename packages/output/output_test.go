package output

import (
	"bytes"
	"encoding/json"
	"encoding/xml"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

func sampleSuite() *runner.SuiteResult {
	start := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)
	return &runner.SuiteResult{
		RunID:      "ab12cd34",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
		Passed:     1,
		Failed:     2,
		Jobs: []runner.JobResult{
			{
				Name:     "login flow",
				OK:       true,
				Duration: 1200 * time.Millisecond,
				Steps: []runner.StepResult{
					{Index: 0, Action: "goto", OK: true, Duration: 800 * time.Millisecond},
					{Index: 1, Action: "click", OK: true, Duration: 400 * time.Millisecond},
				},
			},
			{
				Name:     "checkout",
				OK:       false,
				Error:    "no selector candidate matched: [#pay]",
				Duration: 900 * time.Millisecond,
				Steps: []runner.StepResult{
					{Index: 0, Action: "goto", OK: true, Duration: 500 * time.Millisecond},
					{Index: 1, Action: "click", OK: false, Error: "no selector candidate matched: [#pay]", Screenshot: "out/step_002.png", Duration: 400 * time.Millisecond},
				},
			},
			{
				Name:  "doomed",
				OK:    false,
				Error: "starting session: browser did not launch",
			},
		},
	}
}

func TestConsoleFormatter(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true))
	f.FormatResult(sampleSuite())

	out := buf.String()
	assert.Contains(t, out, "✓ login flow")
	assert.Contains(t, out, "✗ checkout")
	assert.Contains(t, out, "step 2 (click)")
	assert.Contains(t, out, "no selector candidate matched")
	assert.Contains(t, out, "screenshot: out/step_002.png")
	assert.Contains(t, out, "1 passed")
	assert.Contains(t, out, "2 failed")
	assert.Contains(t, out, "3 total")
}

func TestConsoleFormatterQuiet(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithQuiet(true))
	f.FormatHeader("1.2.3")
	assert.Empty(t, buf.String())
}

func TestConsoleFormatterVerboseShowsPassingSteps(t *testing.T) {
	var buf bytes.Buffer
	f := NewConsoleFormatter(WithWriter(&buf), WithNoColor(true), WithVerbose(true))
	f.FormatResult(sampleSuite())

	assert.Contains(t, buf.String(), "step 1 (goto)")
	assert.Contains(t, buf.String(), "Job durations:")
}

func TestBuildJSON(t *testing.T) {
	out := BuildJSON(sampleSuite())

	assert.Equal(t, "ab12cd34", out.RunID)
	assert.Equal(t, 3, out.Summary.Total)
	assert.Equal(t, 1, out.Summary.Passed)
	assert.Equal(t, 2, out.Summary.Failed)
	assert.Equal(t, float64(3000), out.Duration)

	require.Len(t, out.Jobs, 3)
	assert.True(t, out.Jobs[0].Passed)
	assert.Equal(t, "checkout", out.Jobs[1].Name)
	assert.False(t, out.Jobs[1].Passed)
	assert.Equal(t, "out/step_002.png", out.Jobs[1].Steps[1].Screenshot)
	assert.Contains(t, out.Jobs[2].Error, "browser did not launch")
}

func TestWriteJSONFile(t *testing.T) {
	dir := t.TempDir()
	path, err := WriteJSONFile(dir, sampleSuite())
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "summary.json"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var decoded JSONOutput
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "ab12cd34", decoded.RunID)
	assert.Len(t, decoded.Jobs, 3)
}

func TestWriteJobSummaries(t *testing.T) {
	dir := t.TempDir()
	jobDir := filepath.Join(dir, "01_login_flow")
	require.NoError(t, os.MkdirAll(jobDir, 0o755))

	suite := sampleSuite()
	suite.Jobs[0].Dir = jobDir
	// second job keeps an empty Dir and must be skipped
	require.NoError(t, WriteJobSummaries(suite))

	data, err := os.ReadFile(filepath.Join(jobDir, "summary.json"))
	require.NoError(t, err)

	var decoded JSONJob
	require.NoError(t, json.Unmarshal(data, &decoded))
	assert.Equal(t, "login flow", decoded.Name)
	assert.True(t, decoded.Passed)
	assert.Len(t, decoded.Steps, 2)
}

func TestBuildJUnit(t *testing.T) {
	doc := BuildJUnit(sampleSuite())

	assert.Equal(t, 5, doc.Tests)
	assert.Equal(t, 2, doc.Failures)
	require.Len(t, doc.Suites, 3)

	checkout := doc.Suites[1]
	assert.Equal(t, "checkout", checkout.Name)
	assert.Equal(t, 1, checkout.Failures)
	require.NotNil(t, checkout.TestCases[1].Failure)
	assert.Contains(t, checkout.TestCases[1].Failure.Message, "no selector candidate matched")

	// job without steps still reports its startup failure
	doomed := doc.Suites[2]
	require.Len(t, doomed.TestCases, 1)
	assert.Equal(t, "startup", doomed.TestCases[0].Name)
}

func TestWriteJUnit(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, WriteJUnit(&buf, sampleSuite()))

	var decoded JUnitTestSuites
	require.NoError(t, xml.Unmarshal(buf.Bytes(), &decoded))
	assert.Equal(t, "flowright", decoded.Name)
	assert.Equal(t, 5, decoded.Tests)
}
