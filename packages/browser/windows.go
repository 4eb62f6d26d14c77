package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/page"
	"github.com/chromedp/cdproto/target"
	"github.com/chromedp/chromedp"
)

type windowTarget struct {
	index int
	last  bool
}

// parseWindowTarget interprets a switchToWindow value: a zero-based
// window index, one of the aliases "main", "default" or "first" for the
// job's original window, or "last" for the most recently opened one.
func parseWindowTarget(s string) (windowTarget, error) {
	t := strings.ToLower(strings.TrimSpace(s))
	switch t {
	case "":
		return windowTarget{}, &WindowSwitchError{Target: s, Reason: "no target window given"}
	case "main", "default", "first":
		return windowTarget{index: 0}, nil
	case "last":
		return windowTarget{last: true}, nil
	}

	n, err := strconv.Atoi(t)
	if err != nil || n < 0 {
		return windowTarget{}, &WindowSwitchError{Target: s, Reason: `target must be a window index, "main" or "last"`}
	}
	return windowTarget{index: n}, nil
}

// SwitchToWindow changes the session's current tab. Windows opened by a
// preceding step may not have registered yet, so target discovery polls
// until the requested window appears or the timeout passes.
func (s *Session) SwitchToWindow(ctx context.Context, spec string, timeout time.Duration) error {
	want, err := parseWindowTarget(spec)
	if err != nil {
		return err
	}

	deadline := time.Now().Add(timeout)
	for {
		if err := s.refreshTabs(); err != nil {
			return &WindowSwitchError{Target: spec, Reason: fmt.Sprintf("listing windows: %v", err)}
		}

		s.mu.Lock()
		n := len(s.tabs)
		s.mu.Unlock()

		idx := want.index
		if want.last {
			idx = n - 1
		}

		// "last" right after an open-window step races target attachment:
		// with only the original window visible, keep waiting for the new
		// one instead of switching back to it.
		ready := idx >= 0 && idx < n && !(want.last && n < 2)
		if ready {
			return s.activate(idx, spec)
		}

		if time.Now().After(deadline) {
			if want.last {
				return &WindowSwitchError{Target: spec, Reason: "timed out waiting for a new window"}
			}
			return &WindowSwitchError{Target: spec, Reason: fmt.Sprintf("window index out of range (have %d)", n)}
		}

		select {
		case <-ctx.Done():
			return &WindowSwitchError{Target: spec, Reason: ctx.Err().Error()}
		case <-time.After(100 * time.Millisecond):
		}
	}
}

func (s *Session) activate(idx int, spec string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if idx >= len(s.tabs) {
		return &WindowSwitchError{Target: spec, Reason: fmt.Sprintf("window index out of range (have %d)", len(s.tabs))}
	}
	t := s.tabs[idx]

	if t.ctx == nil {
		attach := s.attachFn
		if attach == nil {
			attach = attachTarget
		}
		tctx, tcancel, err := attach(s.tabs[0].ctx, t.id)
		if err != nil {
			return &WindowSwitchError{Target: spec, Reason: fmt.Sprintf("attaching to window: %v", err)}
		}
		t.ctx, t.cancel = tctx, tcancel
	} else {
		focus := s.focusFn
		if focus == nil {
			focus = bringToFront
		}
		if err := focus(t.ctx); err != nil {
			return &WindowSwitchError{Target: spec, Reason: fmt.Sprintf("focusing window: %v", err)}
		}
	}

	s.current = t
	s.logf("switched to window %d (%s)", idx, t.id)
	return nil
}

// attachTarget builds a chromedp context for a not-yet-attached target.
// Attaching eagerly makes a dead target fail the switch, not the next step.
func attachTarget(parent context.Context, id target.ID) (context.Context, context.CancelFunc, error) {
	tctx, tcancel := chromedp.NewContext(parent, chromedp.WithTargetID(id))
	if err := chromedp.Run(tctx, page.BringToFront()); err != nil {
		tcancel()
		return nil, nil, err
	}
	return tctx, tcancel, nil
}

func bringToFront(ctx context.Context) error {
	return chromedp.Run(ctx, page.BringToFront())
}

// refreshTabs lists the browser's page targets and records any not seen
// before, preserving first-seen order.
func (s *Session) refreshTabs() error {
	s.mu.Lock()
	cur := s.current
	s.mu.Unlock()
	if cur == nil || cur.ctx == nil {
		return errors.New("session closed")
	}

	list := s.targetsFn
	if list == nil {
		list = chromedp.Targets
	}
	infos, err := list(cur.ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, info := range infos {
		if info.Type != "page" {
			continue
		}
		if _, ok := s.known[info.TargetID]; ok {
			continue
		}
		t := &tab{id: info.TargetID}
		s.known[info.TargetID] = t
		s.tabs = append(s.tabs, t)
		s.logf("window discovered: %s", info.TargetID)
	}
	return nil
}
