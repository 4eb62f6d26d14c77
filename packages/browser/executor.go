package browser

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/avishekjana-89/flowright/packages/core/config"
	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/runner"
	"github.com/avishekjana-89/flowright/packages/core/vars"
	"github.com/avishekjana-89/flowright/packages/keyword"
	"github.com/avishekjana-89/flowright/packages/locator"
)

// Executor implements runner.StepExecutor on top of chromedp sessions.
// Steps whose action is not built in fall through to the keyword
// registry.
type Executor struct {
	cfg      *config.Config
	launcher *Launcher
	store    *locator.Store
	registry *keyword.Registry
	logf     func(format string, args ...any)
}

type ExecutorOption func(*Executor)

func WithExecutorLogf(logf func(format string, args ...any)) ExecutorOption {
	return func(e *Executor) { e.logf = logf }
}

func NewExecutor(cfg *config.Config, launcher *Launcher, store *locator.Store, registry *keyword.Registry, opts ...ExecutorOption) *Executor {
	e := &Executor{
		cfg:      cfg,
		launcher: launcher,
		store:    store,
		registry: registry,
		logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// StartJob launches an isolated browser session and a per-job locator
// cache for one job.
func (e *Executor) StartJob(ctx context.Context, job *parser.Job, runDir string) (runner.JobSession, error) {
	session, err := e.launcher.NewSession(ctx)
	if err != nil {
		return nil, err
	}
	return &jobSession{
		exec:    e,
		session: session,
		cache:   locator.NewCache(e.store),
	}, nil
}

// RunStep executes a single built-in step on the given tab context. It is
// the execution hook handed to composite keyword definitions. When the
// context carries the invoking job's session state, the job's locator
// cache and window list are reused; otherwise the step runs with a fresh
// cache and no session.
func (e *Executor) RunStep(ctx context.Context, step *parser.Step, scope *vars.Scope) (any, error) {
	cache := locator.NewCache(e.store)
	var sess *Session
	if js, ok := jobStateFrom(ctx); ok {
		cache = js.cache
		sess = js.session
	}

	ref := healRefForStep(step)
	cache.ResolveStep(step)

	value, ok, err := e.dispatch(ctx, step, sess, ref)
	if err != nil {
		return value, err
	}
	if !ok {
		return value, fmt.Errorf("step %q failed", step.Action)
	}
	storeValue(step, scope, value)
	return value, nil
}

// jobStateKey carries the invoking jobSession through keyword handler
// contexts, so composite steps share the job's caches.
type jobStateKey struct{}

func withJobState(ctx context.Context, s *jobSession) context.Context {
	return context.WithValue(ctx, jobStateKey{}, s)
}

func jobStateFrom(ctx context.Context) (*jobSession, bool) {
	s, ok := ctx.Value(jobStateKey{}).(*jobSession)
	return s, ok
}

type jobSession struct {
	exec    *Executor
	session *Session
	cache   *locator.Cache
}

func (s *jobSession) ExecStep(ctx context.Context, step *parser.Step, scope *vars.Scope) (any, bool, error) {
	if err := ctx.Err(); err != nil {
		return nil, false, err
	}
	tab := s.session.Tab()

	if !parser.IsBuiltinAction(step.Action) {
		h, found := s.exec.registry.Get(step.Action)
		if !found {
			return nil, false, fmt.Errorf("unknown action %q: no keyword registered", step.Action)
		}
		ok, value, err := keyword.Invoke(withJobState(tab, s), h, step, scope)
		if err != nil {
			return value, false, err
		}
		storeValue(step, scope, value)
		return value, ok, nil
	}

	ref := healRefForStep(step)
	s.cache.ResolveStep(step)

	value, ok, err := s.exec.dispatch(tab, step, s.session, ref)
	if ok && err == nil {
		storeValue(step, scope, value)
	}
	return value, ok, err
}

func (s *jobSession) Screenshot(ctx context.Context, path string) error {
	return s.session.Screenshot(ctx, path)
}

func (s *jobSession) Close() error {
	return s.session.Close()
}

// runSelector drives the candidate fallback for one element action. Each
// candidate attempt is bounded by its own timeout; exhausting the list is
// a step failure, not a hard error.
func (e *Executor) runSelector(ctx context.Context, step *parser.Step, healRef string, timeout time.Duration, act func(ctx context.Context, sel string) (any, error)) (any, bool, error) {
	outcome, err := locator.Try(ctx, step.Selectors, func(ctx context.Context, sel string) (any, error) {
		attemptCtx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()
		return act(attemptCtx, sel)
	})
	if err != nil {
		return nil, false, err
	}
	if !outcome.OK {
		return nil, false, outcome.Failure
	}

	if outcome.Healed {
		e.logf("selector healed for %s: %q matched after primary failed", step.Action, outcome.Winner)
		e.persistHealing(step, healRef, outcome)
	}
	return outcome.Value, true, nil
}

// persistHealing writes a healed ordering back to the locator store.
// Persistence failures must never fail the step that already succeeded;
// they are logged and swallowed.
func (e *Executor) persistHealing(step *parser.Step, ref string, outcome *locator.Outcome) {
	if e.store == nil || step.ObjectFolderID == "" || ref == "" {
		return
	}
	if err := e.store.ApplyHealing(step.ObjectFolderID, ref, outcome.Winner, outcome.Candidates, step.Hash); err != nil {
		e.logf("persisting healed selector for %s: %v", ref, err)
	}
}

// healRefForStep captures the selector group key before cache resolution
// replaces the reference with concrete candidates.
func healRefForStep(step *parser.Step) string {
	if strings.HasPrefix(step.SelectorRef, "$") {
		return step.SelectorRef
	}
	if len(step.Selectors) > 0 && strings.HasPrefix(step.Selectors[0], "$") {
		return step.Selectors[0]
	}
	return ""
}

func storeValue(step *parser.Step, scope *vars.Scope, value any) {
	if step.StoreAs == "" || value == nil {
		return
	}
	scope.Set(step.StoreAs, fmt.Sprint(value))
}
