package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishekjana-89/flowright/packages/core/runner"
)

func openTestRecorder(t *testing.T) *Recorder {
	t.Helper()
	rec, err := Open(filepath.Join(t.TempDir(), "history.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = rec.Close() })
	return rec
}

func suiteAt(id string, start time.Time, jobs ...runner.JobResult) *runner.SuiteResult {
	s := &runner.SuiteResult{
		RunID:      id,
		StartedAt:  start,
		FinishedAt: start.Add(2 * time.Second),
		Jobs:       jobs,
	}
	for _, jr := range jobs {
		if jr.OK {
			s.Passed++
		} else {
			s.Failed++
		}
	}
	return s
}

func TestRecordAndRecent(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, rec.Record(ctx, suiteAt("run-1", base,
		runner.JobResult{Name: "login", OK: true, Duration: 1200 * time.Millisecond},
	)))
	require.NoError(t, rec.Record(ctx, suiteAt("run-2", base.Add(time.Hour),
		runner.JobResult{Name: "login", OK: false, Error: "selector not found", Duration: 800 * time.Millisecond},
		runner.JobResult{Name: "checkout", OK: true, Duration: 2 * time.Second},
	)))

	runs, err := rec.Recent(ctx, 10)
	require.NoError(t, err)
	require.Len(t, runs, 2)

	// newest first
	assert.Equal(t, "run-2", runs[0].ID)
	assert.Equal(t, 1, runs[0].Passed)
	assert.Equal(t, 1, runs[0].Failed)
	assert.Equal(t, "run-1", runs[1].ID)
}

func TestRecentLimit(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 5; i++ {
		require.NoError(t, rec.Record(ctx, suiteAt(
			string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))))
	}

	runs, err := rec.Recent(ctx, 3)
	require.NoError(t, err)
	assert.Len(t, runs, 3)
}

func TestRecordDuplicateRunIDFails(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()
	base := time.Now()

	require.NoError(t, rec.Record(ctx, suiteAt("dup", base)))
	err := rec.Record(ctx, suiteAt("dup", base))
	assert.Error(t, err)
}

func TestJobHistory(t *testing.T) {
	rec := openTestRecorder(t)
	ctx := context.Background()
	base := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	require.NoError(t, rec.Record(ctx, suiteAt("r1", base,
		runner.JobResult{Name: "login", OK: true, Duration: time.Second},
		runner.JobResult{Name: "checkout", OK: true, Duration: 3 * time.Second},
	)))
	require.NoError(t, rec.Record(ctx, suiteAt("r2", base.Add(time.Hour),
		runner.JobResult{Name: "login", OK: false, Error: "window switch timed out", Duration: 2 * time.Second},
	)))

	stats, err := rec.JobHistory(ctx, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	// login ran twice, so it sorts first
	login := stats[0]
	assert.Equal(t, "login", login.Name)
	assert.Equal(t, 2, login.Runs)
	assert.Equal(t, 1, login.Passes)
	assert.Equal(t, int64(1500), login.AvgMillis)
	assert.Equal(t, "window switch timed out", login.LastError)

	checkout := stats[1]
	assert.Equal(t, 1, checkout.Runs)
	assert.Equal(t, 1, checkout.Passes)
	assert.Empty(t, checkout.LastError)
}
