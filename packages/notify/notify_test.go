package notify

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

func sampleResult(failed int) *runner.SuiteResult {
	start := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	result := &runner.SuiteResult{
		RunID:      "suite_run_cafe0123",
		StartedAt:  start,
		FinishedAt: start.Add(3 * time.Second),
	}
	result.Jobs = append(result.Jobs, runner.JobResult{Name: "login", OK: true})
	result.Passed = 1
	for i := 0; i < failed; i++ {
		result.Jobs = append(result.Jobs, runner.JobResult{
			Name:  "checkout",
			OK:    false,
			Error: "step 3 failed",
		})
		result.Failed++
	}
	return result
}

func TestBuildSummary(t *testing.T) {
	s := BuildSummary(sampleResult(1))

	assert.Equal(t, "suite_run_cafe0123", s.RunID)
	assert.Equal(t, 2, s.TotalJobs)
	assert.Equal(t, 1, s.PassedJobs)
	assert.Equal(t, 1, s.FailedJobs)
	assert.Equal(t, 3*time.Second, s.Duration)
	require.Len(t, s.Failures, 1)
	assert.Equal(t, "checkout", s.Failures[0].Name)
	assert.Equal(t, "step 3 failed", s.Failures[0].Error)
}

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		in      string
		want    Policy
		wantErr bool
	}{
		{"", PolicyFailure, false},
		{"always", PolicyAlways, false},
		{"failure", PolicyFailure, false},
		{"success", PolicySuccess, false},
		{"recovery", "", true},
	}

	for _, tt := range tests {
		got, err := ParsePolicy(tt.in)
		if tt.wantErr {
			assert.Error(t, err, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

type recordingNotifier struct {
	calls int
}

func (r *recordingNotifier) Notify(*Summary) error { r.calls++; return nil }
func (r *recordingNotifier) Name() string          { return "recording" }

func TestManagerPolicy(t *testing.T) {
	passing := BuildSummary(sampleResult(0))
	failing := BuildSummary(sampleResult(1))

	tests := []struct {
		name    string
		policy  Policy
		summary *Summary
		sent    bool
	}{
		{"failure policy skips passing run", PolicyFailure, passing, false},
		{"failure policy sends failing run", PolicyFailure, failing, true},
		{"always policy sends passing run", PolicyAlways, passing, true},
		{"success policy skips failing run", PolicySuccess, failing, false},
		{"success policy sends passing run", PolicySuccess, passing, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := &recordingNotifier{}
			m := NewManager(tt.policy, rec)
			require.NoError(t, m.Notify(tt.summary))
			assert.Equal(t, tt.sent, rec.calls == 1)
		})
	}
}

func TestSlackNotifier(t *testing.T) {
	var payload slackMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL, WithSlackChannel("#ci"), WithSlackUsername("runner"))
	require.NoError(t, n.Notify(BuildSummary(sampleResult(1))))

	assert.Equal(t, "#ci", payload.Channel)
	assert.Equal(t, "runner", payload.Username)
	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "danger", payload.Attachments[0].Color)
	assert.Contains(t, payload.Attachments[0].Text, "checkout")
}

func TestSlackNotifierServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "invalid_payload", http.StatusBadRequest)
	}))
	defer srv.Close()

	n := NewSlackNotifier(srv.URL)
	err := n.Notify(BuildSummary(sampleResult(0)))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "status 400")
}

func TestTeamsNotifier(t *testing.T) {
	var payload teamsMessage
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &payload))
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	n := NewTeamsNotifier(srv.URL)
	require.NoError(t, n.Notify(BuildSummary(sampleResult(0))))

	require.Len(t, payload.Attachments, 1)
	assert.Equal(t, "AdaptiveCard", payload.Attachments[0].Content.Type)
	require.NotEmpty(t, payload.Attachments[0].Content.Body)
	assert.Contains(t, payload.Attachments[0].Content.Body[0].Text, "All jobs passed")
}
