// Package notify posts suite outcomes to chat webhooks after a run.
package notify

import (
	"fmt"
	"time"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

// Policy specifies when a run triggers a notification.
type Policy string

const (
	// PolicyAlways notifies on every run.
	PolicyAlways Policy = "always"
	// PolicyFailure notifies only when at least one job fails.
	PolicyFailure Policy = "failure"
	// PolicySuccess notifies only when every job passes.
	PolicySuccess Policy = "success"
)

// ParsePolicy maps a flag value to a Policy; empty means PolicyFailure.
func ParsePolicy(s string) (Policy, error) {
	switch Policy(s) {
	case "":
		return PolicyFailure, nil
	case PolicyAlways, PolicyFailure, PolicySuccess:
		return Policy(s), nil
	}
	return "", fmt.Errorf("unknown notify policy %q (use always, failure or success)", s)
}

// Summary is the flattened run outcome sent to notifiers.
type Summary struct {
	RunID      string        `json:"run_id"`
	TotalJobs  int           `json:"total_jobs"`
	PassedJobs int           `json:"passed_jobs"`
	FailedJobs int           `json:"failed_jobs"`
	Duration   time.Duration `json:"duration"`
	Failures   []FailedJob   `json:"failures,omitempty"`
}

// FailedJob carries the detail lines shown for one failed job.
type FailedJob struct {
	Name  string `json:"name"`
	Error string `json:"error,omitempty"`
}

// BuildSummary flattens a suite result for notification payloads.
func BuildSummary(result *runner.SuiteResult) *Summary {
	s := &Summary{
		RunID:      result.RunID,
		TotalJobs:  len(result.Jobs),
		PassedJobs: result.Passed,
		FailedJobs: result.Failed,
		Duration:   result.Duration(),
	}
	for _, job := range result.Jobs {
		if job.OK {
			continue
		}
		s.Failures = append(s.Failures, FailedJob{Name: job.Name, Error: job.Error})
	}
	return s
}

// Notifier delivers one summary to one destination.
type Notifier interface {
	Notify(summary *Summary) error
	Name() string
}

// Manager fans a summary out to its notifiers when the policy matches.
type Manager struct {
	notifiers []Notifier
	policy    Policy
}

func NewManager(policy Policy, notifiers ...Notifier) *Manager {
	return &Manager{notifiers: notifiers, policy: policy}
}

func (m *Manager) AddNotifier(n Notifier) {
	m.notifiers = append(m.notifiers, n)
}

// Notify applies the policy and sends to every notifier. Delivery failures
// do not stop remaining notifiers; the last error is returned.
func (m *Manager) Notify(summary *Summary) error {
	send := false
	switch m.policy {
	case PolicyAlways:
		send = true
	case PolicyFailure:
		send = summary.FailedJobs > 0
	case PolicySuccess:
		send = summary.FailedJobs == 0
	}
	if !send {
		return nil
	}

	var lastErr error
	for _, n := range m.notifiers {
		if err := n.Notify(summary); err != nil {
			lastErr = fmt.Errorf("%s: %w", n.Name(), err)
		}
	}
	return lastErr
}
