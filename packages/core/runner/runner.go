package runner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
)

const (
	// DefaultConcurrency is the number of jobs run in parallel when no
	// concurrency is configured.
	DefaultConcurrency = 1
	// MaxConcurrency caps the number of simultaneous browser sessions.
	MaxConcurrency = 20
)

type Options struct {
	RunID       string
	RunDir      string
	Concurrency int
	// LaunchRate throttles session launches, in launches per second.
	// Zero means unthrottled.
	LaunchRate float64
	Screenshot string
	Logf       func(format string, args ...any)
}

type Runner struct {
	exec    StepExecutor
	globals map[string]string
	opts    Options
}

func New(exec StepExecutor, globals map[string]string, opts Options) *Runner {
	if opts.RunID == "" {
		opts.RunID = strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
	}
	if opts.Screenshot == "" {
		opts.Screenshot = config.ScreenshotOnFailure
	}
	if opts.Logf == nil {
		opts.Logf = func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		}
	}
	return &Runner{exec: exec, globals: globals, opts: opts}
}

// ClampConcurrency bounds a requested concurrency to the supported range.
func ClampConcurrency(n int) int {
	if n < 1 {
		return 1
	}
	if n > MaxConcurrency {
		return MaxConcurrency
	}
	return n
}

// Run executes all jobs and returns the suite result. Jobs run
// independently; one job failing never interrupts the others. Run only
// returns an error when the context is cancelled before completion.
func (r *Runner) Run(ctx context.Context, jobs []*parser.Job) (*SuiteResult, error) {
	suite := &SuiteResult{
		RunID:     r.opts.RunID,
		StartedAt: time.Now(),
		Jobs:      make([]JobResult, len(jobs)),
	}

	concurrency := r.opts.Concurrency
	if concurrency == 0 {
		concurrency = DefaultConcurrency
	}
	concurrency = ClampConcurrency(concurrency)

	var limiter *rate.Limiter
	if r.opts.LaunchRate > 0 {
		limiter = rate.NewLimiter(rate.Limit(r.opts.LaunchRate), 1)
	}

	var wg sync.WaitGroup
	sem := make(chan struct{}, concurrency)

	for i, job := range jobs {
		wg.Add(1)

		go func(idx int, job *parser.Job) {
			defer wg.Done()

			select {
			case sem <- struct{}{}: // acquire semaphore
			case <-ctx.Done():
				suite.Jobs[idx] = JobResult{Name: job.Name, Error: ctx.Err().Error()}
				return
			}
			defer func() { <-sem }() // release semaphore

			if limiter != nil {
				if err := limiter.Wait(ctx); err != nil {
					suite.Jobs[idx] = JobResult{Name: job.Name, Error: err.Error()}
					return
				}
			}

			suite.Jobs[idx] = r.runJob(ctx, idx, job)
		}(i, job)
	}

	wg.Wait()
	suite.FinishedAt = time.Now()

	for _, jr := range suite.Jobs {
		if jr.OK {
			suite.Passed++
		} else {
			suite.Failed++
		}
	}

	if err := ctx.Err(); err != nil {
		return suite, err
	}
	return suite, nil
}

func (r *Runner) runJob(ctx context.Context, idx int, job *parser.Job) JobResult {
	start := time.Now()

	// Each job gets its own copy of the steps and its own variable scope,
	// so healing and captured values never leak across jobs.
	job = job.Clone()
	scope := vars.NewScope(r.globals)

	result := JobResult{Name: job.Name}

	var jobDir string
	if r.opts.RunDir != "" {
		jobDir = filepath.Join(r.opts.RunDir, jobDirName(idx, job.Name))
		if err := os.MkdirAll(jobDir, 0o755); err != nil {
			result.Error = fmt.Sprintf("creating job directory: %v", err)
			result.Duration = time.Since(start)
			return result
		}
		result.Dir = jobDir
	}

	session, err := r.exec.StartJob(ctx, job, jobDir)
	if err != nil {
		result.Error = fmt.Sprintf("starting session: %v", err)
		result.Duration = time.Since(start)
		return result
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			r.opts.Logf("job %q: closing session: %v", job.Name, cerr)
		}
	}()

	result.OK = true
	for i, step := range job.Steps {
		resolved := scope.SubstituteStep(step)

		stepStart := time.Now()
		value, ok, err := session.ExecStep(ctx, resolved, scope)
		sr := StepResult{
			Index:    i,
			Action:   step.Action,
			OK:       ok && err == nil,
			Duration: time.Since(stepStart),
			Value:    value,
		}
		if err != nil {
			sr.Error = err.Error()
		}

		if sr.OK {
			if r.opts.Screenshot == config.ScreenshotEvery {
				sr.Screenshot = r.capture(ctx, session, jobDir, i)
			}
		} else {
			if r.opts.Screenshot == config.ScreenshotOnFailure || r.opts.Screenshot == config.ScreenshotEvery {
				sr.Screenshot = r.capture(ctx, session, jobDir, i)
			}
			result.OK = false
			if sr.Error == "" {
				sr.Error = fmt.Sprintf("step %d (%s) failed", i+1, step.Action)
			}
			result.Error = sr.Error
		}

		result.Steps = append(result.Steps, sr)

		if !result.OK {
			break // remaining steps depend on this one
		}
		if ctx.Err() != nil {
			result.OK = false
			result.Error = ctx.Err().Error()
			break
		}
	}

	result.Duration = time.Since(start)
	return result
}

func (r *Runner) capture(ctx context.Context, session JobSession, jobDir string, stepIdx int) string {
	if jobDir == "" {
		return ""
	}
	path := filepath.Join(jobDir, fmt.Sprintf("step_%03d.png", stepIdx+1))
	if err := session.Screenshot(ctx, path); err != nil {
		r.opts.Logf("screenshot for step %d: %v", stepIdx+1, err)
		return ""
	}
	return path
}

var unsafeDirChars = regexp.MustCompile(`[^a-zA-Z0-9_.-]+`)

func jobDirName(idx int, name string) string {
	name = unsafeDirChars.ReplaceAllString(strings.TrimSpace(name), "_")
	if name == "" {
		name = "job"
	}
	return fmt.Sprintf("%02d_%s", idx+1, name)
}
