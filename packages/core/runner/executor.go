package runner

import (
	"context"

	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
)

// StepExecutor creates browser-backed sessions for jobs. The production
// implementation lives in packages/browser; tests supply fakes.
type StepExecutor interface {
	// StartJob prepares an isolated session for a single job. runDir is the
	// directory where job artifacts (screenshots) should be written.
	StartJob(ctx context.Context, job *parser.Job, runDir string) (JobSession, error)
}

// JobSession executes the steps of one job against one browser session.
// Implementations are not required to be safe for concurrent use; the
// runner drives each session from a single goroutine.
type JobSession interface {
	// ExecStep runs a single step. The step has already had variable
	// placeholders substituted. It returns the step's produced value (if
	// any), whether the step passed, and a hard error when execution could
	// not proceed at all.
	ExecStep(ctx context.Context, step *parser.Step, scope *vars.Scope) (value any, ok bool, err error)

	// Screenshot captures the current page to the given file path.
	Screenshot(ctx context.Context, path string) error

	// Close releases the session's browser resources.
	Close() error
}
