package output

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

// JSONOutput is the machine-readable summary of one run.
type JSONOutput struct {
	RunID    string      `json:"runId"`
	Summary  JSONSummary `json:"summary"`
	Jobs     []JSONJob   `json:"jobs"`
	Duration float64     `json:"duration"`
	Time     string      `json:"time"`
}

// JSONSummary aggregates job outcomes.
type JSONSummary struct {
	Total  int `json:"total"`
	Passed int `json:"passed"`
	Failed int `json:"failed"`
}

// JSONJob is a single job result.
type JSONJob struct {
	Name     string     `json:"name"`
	Passed   bool       `json:"passed"`
	Duration float64    `json:"duration"`
	Error    string     `json:"error,omitempty"`
	Dir      string     `json:"dir,omitempty"`
	Steps    []JSONStep `json:"steps"`
}

// JSONStep is a single executed step.
type JSONStep struct {
	Index      int     `json:"index"`
	Action     string  `json:"action"`
	Passed     bool    `json:"passed"`
	Duration   float64 `json:"duration"`
	Value      any     `json:"value,omitempty"`
	Error      string  `json:"error,omitempty"`
	Screenshot string  `json:"screenshot,omitempty"`
}

// BuildJSON converts a suite result into the serializable summary form.
func BuildJSON(result *runner.SuiteResult) *JSONOutput {
	out := &JSONOutput{
		RunID: result.RunID,
		Summary: JSONSummary{
			Total:  len(result.Jobs),
			Passed: result.Passed,
			Failed: result.Failed,
		},
		Jobs:     make([]JSONJob, len(result.Jobs)),
		Duration: float64(result.Duration().Milliseconds()),
		Time:     result.StartedAt.Format(time.RFC3339),
	}

	for i, jr := range result.Jobs {
		job := JSONJob{
			Name:     jr.Name,
			Passed:   jr.OK,
			Duration: float64(jr.Duration.Milliseconds()),
			Error:    jr.Error,
			Dir:      jr.Dir,
			Steps:    make([]JSONStep, len(jr.Steps)),
		}
		for j, sr := range jr.Steps {
			job.Steps[j] = JSONStep{
				Index:      sr.Index,
				Action:     sr.Action,
				Passed:     sr.OK,
				Duration:   float64(sr.Duration.Milliseconds()),
				Value:      sr.Value,
				Error:      sr.Error,
				Screenshot: sr.Screenshot,
			}
		}
		out.Jobs[i] = job
	}
	return out
}

// WriteJSON encodes the summary to w with indentation.
func WriteJSON(w io.Writer, result *runner.SuiteResult) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(BuildJSON(result))
}

// WriteJSONFile writes summary.json into the run directory.
func WriteJSONFile(runDir string, result *runner.SuiteResult) (string, error) {
	path := filepath.Join(runDir, "summary.json")
	f, err := os.Create(path)
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteJSON(f, result); err != nil {
		return "", err
	}
	return path, nil
}

// WriteJobSummaries writes a summary.json into each job directory. Jobs
// without a directory (no run dir configured, or startup failed before the
// directory was made) are skipped.
func WriteJobSummaries(result *runner.SuiteResult) error {
	out := BuildJSON(result)
	for _, job := range out.Jobs {
		if job.Dir == "" {
			continue
		}
		if _, err := os.Stat(job.Dir); err != nil {
			continue
		}
		data, err := json.MarshalIndent(job, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(filepath.Join(job.Dir, "summary.json"), data, 0o644); err != nil {
			return err
		}
	}
	return nil
}
