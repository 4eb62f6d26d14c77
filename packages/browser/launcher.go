package browser

import (
	"context"
	"fmt"
	"os"

	"github.com/chromedp/chromedp"

	"github.com/avishekjana-89/flowright/packages/core/config"
)

// Launcher validates browser configuration once and stamps out isolated
// sessions. Each session runs its own browser process, so jobs never
// share cookies, storage or window lists.
type Launcher struct {
	kind Kind
	cfg  *config.Config
	opts []chromedp.ExecAllocatorOption
	logf func(format string, args ...any)
}

type LauncherOption func(*Launcher)

func WithLauncherLogf(logf func(format string, args ...any)) LauncherOption {
	return func(l *Launcher) { l.logf = logf }
}

func NewLauncher(cfg *config.Config, opts ...LauncherOption) (*Launcher, error) {
	kind, err := ParseKind(cfg.Browser)
	if err != nil {
		return nil, err
	}
	if kind.NeedsExplicitPath() && cfg.BrowserPath == "" {
		return nil, fmt.Errorf("browser %q has no bundled binary: set browserPath (or FLOWRIGHT_BROWSER_PATH) to a CDP-capable build", kind)
	}

	allocOpts := append([]chromedp.ExecAllocatorOption{}, chromedp.DefaultExecAllocatorOptions[:]...)
	allocOpts = append(allocOpts, chromedp.WindowSize(1366, 768))
	if !cfg.GetHeadless() {
		allocOpts = append(allocOpts, chromedp.Flag("headless", false))
	}
	if cfg.BrowserPath != "" {
		allocOpts = append(allocOpts, chromedp.ExecPath(cfg.BrowserPath))
	}

	l := &Launcher{
		kind: kind,
		cfg:  cfg,
		opts: allocOpts,
		logf: func(format string, args ...any) {
			fmt.Fprintf(os.Stderr, format+"\n", args...)
		},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l, nil
}

// Kind returns the validated browser family.
func (l *Launcher) Kind() Kind { return l.kind }

// NewSession launches a browser process and opens its first tab. Launch
// failures surface here, not on the first step.
func (l *Launcher) NewSession(parent context.Context) (*Session, error) {
	allocCtx, allocCancel := chromedp.NewExecAllocator(parent, l.opts...)
	tabCtx, tabCancel := chromedp.NewContext(allocCtx)

	if err := chromedp.Run(tabCtx); err != nil {
		tabCancel()
		allocCancel()
		return nil, fmt.Errorf("launching %s: %w", l.kind, err)
	}

	s := &Session{
		allocCancel: allocCancel,
		logf:        l.logf,
	}
	s.addTab(tabCtx, tabCancel)
	return s, nil
}
