package browser

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/cdproto/input"
	"github.com/chromedp/cdproto/runtime"
	"github.com/chromedp/chromedp"
	"github.com/chromedp/chromedp/kb"
	"github.com/tidwall/gjson"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

// dispatch executes one built-in step action on the given tab context.
// Selector-based actions run through the candidate fallback: the first
// matching candidate wins and, when it was not the primary one, the healed
// ordering is persisted via healRef.
func (e *Executor) dispatch(ctx context.Context, step *parser.Step, sess *Session, healRef string) (any, bool, error) {
	switch step.Action {
	case parser.ActionGoto:
		navCtx, cancel := context.WithTimeout(ctx, e.cfg.NavigationTimeoutDuration())
		defer cancel()
		if err := chromedp.Run(navCtx, chromedp.Navigate(step.URL)); err != nil {
			return nil, false, fmt.Errorf("navigating to %s: %w", step.URL, err)
		}
		return nil, true, nil

	case parser.ActionSwitchToWindow:
		if sess == nil {
			return nil, false, errors.New("switchToWindow is not available here")
		}
		if err := sess.SwitchToWindow(ctx, step.Value, e.cfg.DefaultTimeoutDuration()); err != nil {
			return nil, false, err
		}
		return nil, true, nil

	case parser.ActionVerifyPageTitle:
		tctx, cancel := context.WithTimeout(ctx, e.cfg.AssertionTimeoutDuration())
		defer cancel()
		err := poll(tctx, func(ctx context.Context) (bool, error) {
			var title string
			if err := chromedp.Run(ctx, chromedp.Title(&title)); err != nil {
				return false, err
			}
			return strings.TrimSpace(title) == step.Value, nil
		})
		if err != nil {
			return nil, false, fmt.Errorf("page title is not %q: %w", step.Value, err)
		}
		return nil, true, nil

	case parser.ActionScroll:
		if len(step.Selectors) == 0 {
			if err := chromedp.Run(ctx, chromedp.Evaluate(`window.scrollBy(0, window.innerHeight)`, nil)); err != nil {
				return nil, false, err
			}
			return nil, true, nil
		}
	}

	// Everything below operates on an element.
	root, err := e.resolveFrame(ctx, step)
	if err != nil {
		return nil, false, err
	}

	timeout := e.cfg.DefaultTimeoutDuration()
	if strings.HasPrefix(step.Action, "verify") {
		timeout = e.cfg.AssertionTimeoutDuration()
	}

	act, err := e.elementAction(step, root)
	if err != nil {
		return nil, false, err
	}
	return e.runSelector(ctx, step, healRef, timeout, act)
}

func (e *Executor) resolveFrame(ctx context.Context, step *parser.Step) (*cdp.Node, error) {
	if !step.InIframe || len(step.FrameInfo) == 0 {
		return nil, nil
	}
	return frameRoot(ctx, step.FrameInfo, cdpFrames{timeout: e.cfg.DefaultTimeoutDuration()})
}

// elementAction builds the per-candidate attempt for a selector-based
// action. The returned function receives a timeout-bounded context and a
// single selector candidate.
func (e *Executor) elementAction(step *parser.Step, root *cdp.Node) (func(ctx context.Context, sel string) (any, error), error) {
	run := func(ctx context.Context, actions ...chromedp.Action) (any, error) {
		return nil, chromedp.Run(ctx, actions...)
	}

	switch step.Action {
	case parser.ActionClick:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx,
				chromedp.ScrollIntoView(sel, queryOpts(root)...),
				chromedp.Click(sel, queryOpts(root)...),
			)
		}, nil

	case parser.ActionDoubleClick:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx,
				chromedp.ScrollIntoView(sel, queryOpts(root)...),
				chromedp.DoubleClick(sel, queryOpts(root)...),
			)
		}, nil

	case parser.ActionHover:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, hoverAction(sel, root))
		}, nil

	case parser.ActionFill:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, chromedp.SetValue(sel, step.Value, queryOpts(root)...))
		}, nil

	case parser.ActionPress:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, chromedp.SendKeys(sel, keyForName(step.Value), queryOpts(root)...))
		}, nil

	case parser.ActionSelectDate:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx,
				chromedp.SetValue(sel, step.Value, queryOpts(root)...),
				chromedp.SendKeys(sel, kb.Enter, queryOpts(root)...),
			)
		}, nil

	case parser.ActionSelectDropdown:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, chromedp.SetValue(sel, step.Value, queryOpts(root)...))
		}, nil

	case parser.ActionCheck:
		return e.setCheckedAction(root, true), nil

	case parser.ActionUncheck:
		return e.setCheckedAction(root, false), nil

	case parser.ActionScroll:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, chromedp.ScrollIntoView(sel, queryOpts(root)...))
		}, nil

	case parser.ActionGetText:
		return func(ctx context.Context, sel string) (any, error) {
			var text string
			if err := chromedp.Run(ctx, chromedp.Text(sel, &text, queryOpts(root)...)); err != nil {
				return nil, err
			}
			return strings.TrimSpace(text), nil
		}, nil

	case parser.ActionGetAttribute:
		if step.AttributeName == "" {
			return nil, errors.New("getAttribute requires attributeName")
		}
		return func(ctx context.Context, sel string) (any, error) {
			var val string
			var present bool
			if err := chromedp.Run(ctx, chromedp.AttributeValue(sel, step.AttributeName, &val, &present, queryOpts(root)...)); err != nil {
				return nil, err
			}
			if !present {
				return nil, fmt.Errorf("attribute %q not present", step.AttributeName)
			}
			return val, nil
		}, nil

	case parser.ActionDragAndDrop:
		if step.TargetSelector == "" {
			return nil, errors.New("dragAndDrop requires targetSelector")
		}
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, dragAndDropAction(sel, step.TargetSelector, root))
		}, nil

	case parser.ActionVerifyText:
		return e.assertTextAction(step, root, func(text string) bool {
			return strings.TrimSpace(text) == step.Value
		}, fmt.Sprintf("text is not %q", step.Value)), nil

	case parser.ActionVerifyContainsText:
		return e.assertTextAction(step, root, func(text string) bool {
			return strings.Contains(strings.ToLower(text), strings.ToLower(step.Value))
		}, fmt.Sprintf("text does not contain %q", step.Value)), nil

	case parser.ActionVerifyNotContainsText:
		return e.assertTextAction(step, root, func(text string) bool {
			return !strings.Contains(strings.ToLower(text), strings.ToLower(step.Value))
		}, fmt.Sprintf("text still contains %q", step.Value)), nil

	case parser.ActionVerifyValue:
		return e.assertPropertyAction(step, root, "value", func(v any) bool {
			return fmt.Sprint(v) == step.Value
		}, fmt.Sprintf("value is not %q", step.Value)), nil

	case parser.ActionVerifyVisible:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, chromedp.WaitVisible(sel, queryOpts(root)...))
		}, nil

	case parser.ActionVerifyHidden:
		return e.assertHiddenAction(root), nil

	case parser.ActionVerifyEnabled:
		return func(ctx context.Context, sel string) (any, error) {
			return run(ctx, chromedp.WaitEnabled(sel, queryOpts(root)...))
		}, nil

	case parser.ActionVerifyDisabled:
		return e.assertPropertyAction(step, root, "disabled", func(v any) bool {
			b, ok := v.(bool)
			return ok && b
		}, "element is not disabled"), nil

	case parser.ActionVerifyChecked:
		return e.assertPropertyAction(step, root, "checked", func(v any) bool {
			b, ok := v.(bool)
			return ok && b
		}, "element is not checked"), nil

	case parser.ActionVerifyAttribute:
		return e.assertAttributesAction(step, root)

	case parser.ActionVerifyCount:
		expected, err := strconv.Atoi(strings.TrimSpace(step.Value))
		if err != nil {
			return nil, fmt.Errorf("verifyElementCount requires a numeric value: %w", err)
		}
		return e.assertCountAction(root, expected), nil
	}

	return nil, fmt.Errorf("unsupported action %q", step.Action)
}

func (e *Executor) setCheckedAction(root *cdp.Node, want bool) func(ctx context.Context, sel string) (any, error) {
	return func(ctx context.Context, sel string) (any, error) {
		var checked bool
		if err := chromedp.Run(ctx, chromedp.JavascriptAttribute(sel, "checked", &checked, queryOpts(root)...)); err != nil {
			return nil, err
		}
		if checked == want {
			return nil, nil
		}
		return nil, chromedp.Run(ctx, chromedp.Click(sel, queryOpts(root)...))
	}
}

func (e *Executor) assertTextAction(step *parser.Step, root *cdp.Node, match func(string) bool, desc string) func(ctx context.Context, sel string) (any, error) {
	return func(ctx context.Context, sel string) (any, error) {
		err := poll(ctx, func(ctx context.Context) (bool, error) {
			var text string
			if err := chromedp.Run(ctx, chromedp.Text(sel, &text, queryOpts(root)...)); err != nil {
				return false, err
			}
			return match(text), nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", desc, err)
		}
		return nil, nil
	}
}

func (e *Executor) assertPropertyAction(step *parser.Step, root *cdp.Node, prop string, match func(any) bool, desc string) func(ctx context.Context, sel string) (any, error) {
	return func(ctx context.Context, sel string) (any, error) {
		err := poll(ctx, func(ctx context.Context) (bool, error) {
			var v any
			if err := chromedp.Run(ctx, chromedp.JavascriptAttribute(sel, prop, &v, queryOpts(root)...)); err != nil {
				return false, err
			}
			return match(v), nil
		})
		if err != nil {
			return nil, fmt.Errorf("%s: %w", desc, err)
		}
		return nil, nil
	}
}

// assertHiddenAction passes when no element matches at all or when the
// matched element is not visible.
func (e *Executor) assertHiddenAction(root *cdp.Node) func(ctx context.Context, sel string) (any, error) {
	return func(ctx context.Context, sel string) (any, error) {
		err := poll(ctx, func(ctx context.Context) (bool, error) {
			var nodes []*cdp.Node
			if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, queryOpts(root, chromedp.AtLeast(0))...)); err != nil {
				return false, err
			}
			if len(nodes) == 0 {
				return true, nil
			}
			var v any
			if err := chromedp.Run(ctx, chromedp.JavascriptAttribute(sel, "offsetParent", &v, queryOpts(root)...)); err != nil {
				return false, err
			}
			return v == nil, nil
		})
		if err != nil {
			return nil, fmt.Errorf("element is still visible: %w", err)
		}
		return nil, nil
	}
}

func (e *Executor) assertCountAction(root *cdp.Node, expected int) func(ctx context.Context, sel string) (any, error) {
	return func(ctx context.Context, sel string) (any, error) {
		var last int
		err := poll(ctx, func(ctx context.Context) (bool, error) {
			var nodes []*cdp.Node
			if err := chromedp.Run(ctx, chromedp.Nodes(sel, &nodes, queryOpts(root, chromedp.AtLeast(0))...)); err != nil {
				return false, err
			}
			last = len(nodes)
			return last == expected, nil
		})
		if err != nil {
			return nil, fmt.Errorf("expected %d matching elements, found %d: %w", expected, last, err)
		}
		return last, nil
	}
}

// assertAttributesAction checks attribute expectations given either as a
// JSON object in value or as a single attributeName/value pair.
func (e *Executor) assertAttributesAction(step *parser.Step, root *cdp.Node) (func(ctx context.Context, sel string) (any, error), error) {
	expected := make(map[string]string)
	if parsed := gjson.Parse(step.Value); parsed.IsObject() {
		parsed.ForEach(func(key, value gjson.Result) bool {
			expected[key.String()] = value.String()
			return true
		})
	} else if step.AttributeName != "" {
		expected[step.AttributeName] = step.Value
	}
	if len(expected) == 0 {
		return nil, errors.New("verifyElementAttribute requires attributeName or a JSON object value")
	}

	return func(ctx context.Context, sel string) (any, error) {
		var mismatch string
		err := poll(ctx, func(ctx context.Context) (bool, error) {
			for name, want := range expected {
				var got string
				var present bool
				if err := chromedp.Run(ctx, chromedp.AttributeValue(sel, name, &got, &present, queryOpts(root)...)); err != nil {
					return false, err
				}
				if !present || got != want {
					mismatch = fmt.Sprintf("attribute %q is %q, want %q", name, got, want)
					return false, nil
				}
			}
			return true, nil
		})
		if err != nil {
			if mismatch != "" {
				return nil, fmt.Errorf("%s: %w", mismatch, err)
			}
			return nil, err
		}
		return nil, nil
	}, nil
}

func queryOpts(root *cdp.Node, extra ...chromedp.QueryOption) []chromedp.QueryOption {
	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if root != nil {
		opts = append(opts, chromedp.FromNode(root))
	}
	return append(opts, extra...)
}

// poll re-evaluates check until it reports true or ctx expires. Errors
// from check do not abort the loop; the element may simply not have
// rendered yet.
func poll(ctx context.Context, check func(ctx context.Context) (bool, error)) error {
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

	var lastErr error
	for {
		ok, err := check(ctx)
		if err == nil && ok {
			return nil
		}
		if err != nil {
			lastErr = err
		}

		select {
		case <-ctx.Done():
			if lastErr != nil {
				return fmt.Errorf("%w (last error: %v)", ctx.Err(), lastErr)
			}
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

var keyNames = map[string]string{
	"enter":      kb.Enter,
	"tab":        kb.Tab,
	"escape":     kb.Escape,
	"backspace":  kb.Backspace,
	"delete":     kb.Delete,
	"arrowup":    kb.ArrowUp,
	"arrowdown":  kb.ArrowDown,
	"arrowleft":  kb.ArrowLeft,
	"arrowright": kb.ArrowRight,
	"home":       kb.Home,
	"end":        kb.End,
	"pageup":     kb.PageUp,
	"pagedown":   kb.PageDown,
	"space":      " ",
}

// keyForName maps a named key to its DOM key string; unknown names are
// sent as literal characters.
func keyForName(name string) string {
	if k, ok := keyNames[strings.ToLower(strings.TrimSpace(name))]; ok {
		return k
	}
	return name
}

// hoverAction moves the mouse to the center of the first matched element.
func hoverAction(sel string, root *cdp.Node) chromedp.Action {
	return chromedp.QueryAfter(sel, func(ctx context.Context, execCtx runtime.ExecutionContextID, nodes ...*cdp.Node) error {
		if len(nodes) == 0 {
			return errors.New("no element matched")
		}
		x, y, err := nodeCenter(ctx, nodes[0])
		if err != nil {
			return err
		}
		return input.DispatchMouseEvent(input.MouseMoved, x, y).Do(ctx)
	}, queryOpts(root)...)
}

// dragAndDropAction presses on the source element, moves to the target
// and releases.
func dragAndDropAction(source, target string, root *cdp.Node) chromedp.Action {
	return chromedp.ActionFunc(func(ctx context.Context) error {
		var src, dst []*cdp.Node
		if err := chromedp.Nodes(source, &src, queryOpts(root)...).Do(ctx); err != nil {
			return err
		}
		if err := chromedp.Nodes(target, &dst, queryOpts(root)...).Do(ctx); err != nil {
			return fmt.Errorf("drag target %q: %w", target, err)
		}

		sx, sy, err := nodeCenter(ctx, src[0])
		if err != nil {
			return err
		}
		tx, ty, err := nodeCenter(ctx, dst[0])
		if err != nil {
			return err
		}

		events := []*input.DispatchMouseEventParams{
			input.DispatchMouseEvent(input.MouseMoved, sx, sy),
			input.DispatchMouseEvent(input.MousePressed, sx, sy).WithButton(input.Left).WithClickCount(1),
			input.DispatchMouseEvent(input.MouseMoved, tx, ty).WithButton(input.Left),
			input.DispatchMouseEvent(input.MouseReleased, tx, ty).WithButton(input.Left).WithClickCount(1),
		}
		for _, ev := range events {
			if err := ev.Do(ctx); err != nil {
				return err
			}
		}
		return nil
	})
}

func nodeCenter(ctx context.Context, n *cdp.Node) (float64, float64, error) {
	quads, err := dom.GetContentQuads().WithNodeID(n.NodeID).Do(ctx)
	if err != nil {
		return 0, 0, err
	}
	if len(quads) == 0 || len(quads[0]) < 8 {
		return 0, 0, errors.New("node has no layout box")
	}
	q := quads[0]
	return (q[0] + q[2] + q[4] + q[6]) / 4, (q[1] + q[3] + q[5] + q[7]) / 4, nil
}
