package runner

import (
	"time"

	"github.com/HdrHistogram/hdrhistogram-go"
)

// TimingStats summarizes job durations across a suite run.
type TimingStats struct {
	Jobs   int
	Steps  int
	P50    time.Duration
	P95    time.Duration
	P99    time.Duration
	Min    time.Duration
	Max    time.Duration
	Mean   time.Duration
	StdDev time.Duration
}

// Timings computes duration percentiles over the suite's job results.
func (s *SuiteResult) Timings() TimingStats {
	// 1us to 1h range, 3 significant digits
	hist := hdrhistogram.New(1, 3_600_000_000, 3)

	stats := TimingStats{Jobs: len(s.Jobs)}
	for _, jr := range s.Jobs {
		stats.Steps += len(jr.Steps)

		us := jr.Duration.Microseconds()
		if us < 1 {
			us = 1
		}
		if us > 3_600_000_000 {
			us = 3_600_000_000
		}
		_ = hist.RecordValue(us)
	}

	if stats.Jobs == 0 {
		return stats
	}

	stats.P50 = time.Duration(hist.ValueAtQuantile(50)) * time.Microsecond
	stats.P95 = time.Duration(hist.ValueAtQuantile(95)) * time.Microsecond
	stats.P99 = time.Duration(hist.ValueAtQuantile(99)) * time.Microsecond
	stats.Min = time.Duration(hist.Min()) * time.Microsecond
	stats.Max = time.Duration(hist.Max()) * time.Microsecond
	stats.Mean = time.Duration(hist.Mean()) * time.Microsecond
	stats.StdDev = time.Duration(hist.StdDev()) * time.Microsecond
	return stats
}
