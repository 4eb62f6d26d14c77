package runner

import (
	"time"
)

// StepResult records the outcome of a single executed step.
type StepResult struct {
	Index      int           `json:"index"`
	Action     string        `json:"action"`
	OK         bool          `json:"ok"`
	Duration   time.Duration `json:"duration_ns"`
	Value      any           `json:"value,omitempty"`
	Error      string        `json:"error,omitempty"`
	Screenshot string        `json:"screenshot,omitempty"`
}

// JobResult aggregates the step results of one job.
type JobResult struct {
	Name     string        `json:"name"`
	OK       bool          `json:"ok"`
	Error    string        `json:"error,omitempty"`
	Steps    []StepResult  `json:"steps"`
	Duration time.Duration `json:"duration_ns"`
	Dir      string        `json:"dir,omitempty"`
}

// SuiteResult is the outcome of one runner invocation.
type SuiteResult struct {
	RunID      string      `json:"run_id"`
	StartedAt  time.Time   `json:"started_at"`
	FinishedAt time.Time   `json:"finished_at"`
	Jobs       []JobResult `json:"jobs"`
	Passed     int         `json:"passed"`
	Failed     int         `json:"failed"`
}

// Duration returns the wall-clock time of the whole run.
func (s *SuiteResult) Duration() time.Duration {
	return s.FinishedAt.Sub(s.StartedAt)
}
