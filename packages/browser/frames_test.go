package browser

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/chromedp/cdproto/cdp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

// fakeFrames serves a frame tree keyed by selector. Each entry maps a
// selector, visible only under the recorded parent document, to the
// frame's content document.
type fakeFrames struct {
	// selector -> required query root (nil for the top document)
	parents map[string]*cdp.Node
	// selector -> content document returned for that frame
	docs map[string]*cdp.Node
	// selector -> query error
	broken map[string]error

	queried []string
}

func (f *fakeFrames) QueryFrame(ctx context.Context, sel string, root *cdp.Node) (*cdp.Node, error) {
	f.queried = append(f.queried, sel)
	if err, ok := f.broken[sel]; ok {
		return nil, err
	}
	want, ok := f.parents[sel]
	if !ok {
		return nil, errors.New("no element matched")
	}
	if want != root {
		return nil, fmt.Errorf("frame %q not visible from this document", sel)
	}
	return &cdp.Node{NodeID: cdp.NodeID(len(f.queried))}, nil
}

func (f *fakeFrames) ContentDocument(ctx context.Context, node *cdp.Node) (*cdp.Node, error) {
	doc, ok := f.docs[f.queried[len(f.queried)-1]]
	if !ok {
		return nil, errors.New("element is not a frame")
	}
	return doc, nil
}

func TestFrameRootResolvesNestedChain(t *testing.T) {
	outerDoc := &cdp.Node{NodeID: 100}
	innerDoc := &cdp.Node{NodeID: 200}
	frames := &fakeFrames{
		parents: map[string]*cdp.Node{"#outer": nil, "#inner": outerDoc},
		docs:    map[string]*cdp.Node{"#outer": outerDoc, "#inner": innerDoc},
	}

	// chain given out of order; resolution must follow Index
	root, err := frameRoot(context.Background(), []parser.FrameInfo{
		{Index: 1, FrameSelector: "#inner"},
		{Index: 0, FrameSelector: "#outer"},
	}, frames)

	require.NoError(t, err)
	assert.Same(t, innerDoc, root)
	assert.Equal(t, []string{"#outer", "#inner"}, frames.queried)
}

func TestFrameRootMissingIntermediateFrame(t *testing.T) {
	frames := &fakeFrames{
		parents: map[string]*cdp.Node{},
		docs:    map[string]*cdp.Node{},
		broken:  map[string]error{"#outer": errors.New("no element matched")},
	}

	_, err := frameRoot(context.Background(), []parser.FrameInfo{
		{Index: 0, FrameSelector: "#outer"},
		{Index: 1, FrameSelector: "#inner"},
	}, frames)

	var frErr *FrameResolutionError
	require.ErrorAs(t, err, &frErr)
	assert.Equal(t, "#outer", frErr.Selector)
	assert.Empty(t, frames.queried[1:], "chain walk must stop at the failed frame")
}

func TestFrameRootNonFrameElement(t *testing.T) {
	frames := &fakeFrames{
		parents: map[string]*cdp.Node{"#div": nil},
		docs:    map[string]*cdp.Node{},
	}

	_, err := frameRoot(context.Background(), []parser.FrameInfo{
		{Index: 0, FrameSelector: "#div"},
	}, frames)

	var frErr *FrameResolutionError
	require.ErrorAs(t, err, &frErr)
	assert.Equal(t, "#div", frErr.Selector)
	assert.Contains(t, frErr.Error(), "not a frame")
}

func TestFrameRootEmptySelector(t *testing.T) {
	_, err := frameRoot(context.Background(), []parser.FrameInfo{
		{Index: 0, FrameSelector: ""},
	}, &fakeFrames{})

	var frErr *FrameResolutionError
	require.ErrorAs(t, err, &frErr)
	assert.Contains(t, frErr.Error(), "empty frame selector")
}
