package browser

import (
	"context"
	"errors"
	"sort"
	"time"

	"github.com/chromedp/cdproto/cdp"
	"github.com/chromedp/cdproto/dom"
	"github.com/chromedp/chromedp"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

// frameQuerier locates frame elements and resolves their content
// documents. The CDP implementation is cdpFrames; tests substitute fakes.
type frameQuerier interface {
	QueryFrame(ctx context.Context, sel string, root *cdp.Node) (*cdp.Node, error)
	ContentDocument(ctx context.Context, node *cdp.Node) (*cdp.Node, error)
}

// frameRoot walks an iframe chain from the page's top document and returns
// the content document of the innermost frame. Queries for the step are
// then rooted at that node. Descriptors are applied in ascending Index
// order regardless of their order in the step.
func frameRoot(ctx context.Context, frames []parser.FrameInfo, q frameQuerier) (*cdp.Node, error) {
	ordered := append([]parser.FrameInfo(nil), frames...)
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Index < ordered[j].Index })

	var root *cdp.Node
	for _, fr := range ordered {
		sel := fr.FrameSelector
		if sel == "" {
			return nil, &FrameResolutionError{Selector: sel, Err: errors.New("empty frame selector")}
		}

		node, err := q.QueryFrame(ctx, sel, root)
		if err != nil {
			return nil, &FrameResolutionError{Selector: sel, Err: err}
		}

		doc, err := q.ContentDocument(ctx, node)
		if err != nil {
			return nil, &FrameResolutionError{Selector: sel, Err: err}
		}
		root = doc
	}
	return root, nil
}

// cdpFrames resolves frames through the DevTools protocol.
type cdpFrames struct {
	timeout time.Duration
}

func (f cdpFrames) QueryFrame(ctx context.Context, sel string, root *cdp.Node) (*cdp.Node, error) {
	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	opts := []chromedp.QueryOption{chromedp.ByQuery}
	if root != nil {
		opts = append(opts, chromedp.FromNode(root))
	}

	var nodes []*cdp.Node
	if err := chromedp.Run(tctx, chromedp.Nodes(sel, &nodes, opts...)); err != nil {
		return nil, err
	}
	if len(nodes) == 0 {
		return nil, errors.New("no element matched")
	}
	return nodes[0], nil
}

// ContentDocument resolves the document node of a frame element. Same
// process frames carry it on the query result; out of process frames need
// an explicit describe with piercing.
func (f cdpFrames) ContentDocument(ctx context.Context, node *cdp.Node) (*cdp.Node, error) {
	if node.ContentDocument != nil {
		return node.ContentDocument, nil
	}

	tctx, cancel := context.WithTimeout(ctx, f.timeout)
	defer cancel()

	var doc *cdp.Node
	err := chromedp.Run(tctx, chromedp.ActionFunc(func(ctx context.Context) error {
		desc, err := dom.DescribeNode().
			WithNodeID(node.NodeID).
			WithDepth(1).
			WithPierce(true).
			Do(ctx)
		if err != nil {
			return err
		}
		if desc.ContentDocument == nil {
			return errors.New("element is not a frame")
		}
		doc = desc.ContentDocument
		return nil
	}))
	if err != nil {
		return nil, err
	}
	return doc, nil
}
