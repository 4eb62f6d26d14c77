package browser

import (
	"context"
	"os"
	"sync"

	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

// tab is one attached page target. ctx is nil until the tab has been
// switched to at least once.
type tab struct {
	id     target.ID
	ctx    context.Context
	cancel context.CancelFunc
}

// Session is one job's browser process. Tabs are tracked in the order
// they were first observed, which mirrors the order windows were opened
// in. Sessions are confined to the job's goroutine except for Close.
type Session struct {
	allocCancel context.CancelFunc
	logf        func(format string, args ...any)

	// CDP seams, nil means the chromedp defaults. Tests inject fakes.
	targetsFn func(ctx context.Context) ([]*target.Info, error)
	attachFn  func(parent context.Context, id target.ID) (context.Context, context.CancelFunc, error)
	focusFn   func(ctx context.Context) error

	mu      sync.Mutex
	tabs    []*tab
	known   map[target.ID]*tab
	current *tab
}

func (s *Session) addTab(ctx context.Context, cancel context.CancelFunc) {
	t := &tab{ctx: ctx, cancel: cancel}
	if c := chromedp.FromContext(ctx); c != nil && c.Target != nil {
		t.id = c.Target.TargetID
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if s.known == nil {
		s.known = make(map[target.ID]*tab)
	}
	s.tabs = append(s.tabs, t)
	if t.id != "" {
		s.known[t.id] = t
	}
	s.current = t
}

// Tab returns the context of the currently focused page.
func (s *Session) Tab() context.Context {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.current.ctx
}

// Screenshot writes a full-page capture of the current tab to path.
func (s *Session) Screenshot(ctx context.Context, path string) error {
	var buf []byte
	if err := chromedp.Run(s.Tab(), chromedp.FullScreenshot(&buf, 90)); err != nil {
		return err
	}
	return os.WriteFile(path, buf, 0o644)
}

// Close tears down every attached tab and the browser process.
func (s *Session) Close() error {
	s.mu.Lock()
	tabs := s.tabs
	s.tabs = nil
	s.known = nil
	s.mu.Unlock()

	for _, t := range tabs {
		if t.cancel != nil {
			t.cancel()
		}
	}
	if s.allocCancel != nil {
		s.allocCancel()
	}
	return nil
}
