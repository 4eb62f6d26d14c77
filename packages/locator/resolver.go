package locator

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// ErrNoSelectors is returned when a step carries an empty candidate list.
var ErrNoSelectors = errors.New("step requires a non-empty selectors list")

// SelectorNotFoundError records that every candidate failed. It is carried
// in the attempt outcome, not raised: the job layer decides whether a
// failed step aborts the job.
type SelectorNotFoundError struct {
	Selectors []string
	LastErr   error
}

func (e *SelectorNotFoundError) Error() string {
	msg := fmt.Sprintf("no selector candidate matched: [%s]", strings.Join(e.Selectors, ", "))
	if e.LastErr != nil {
		msg += fmt.Sprintf(" (last error: %v)", e.LastErr)
	}
	return msg
}

func (e *SelectorNotFoundError) Unwrap() error { return e.LastErr }

// Action runs one attempt against a single selector candidate. A nil result
// with a nil error means plain success (click-style actions); a non-nil
// result is passed through to the caller (text/attribute extraction).
type Action func(ctx context.Context, selector string) (any, error)

// Outcome describes one resolution attempt over a candidate list.
type Outcome struct {
	OK     bool
	Value  any
	Winner string
	Healed bool
	// Candidates is the original ordered list the attempt ran against.
	Candidates []string
	// Failure is set when OK is false.
	Failure *SelectorNotFoundError
}

// Try runs action against each candidate in order and stops at the first
// success. A winner other than the primary candidate marks the outcome as
// healed. When every candidate fails, Try returns a failed outcome and a
// nil error.
func Try(ctx context.Context, selectors []string, action Action) (*Outcome, error) {
	if len(selectors) == 0 {
		return nil, ErrNoSelectors
	}

	out := &Outcome{Candidates: selectors}
	var lastErr error

	for i, sel := range selectors {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		value, err := action(ctx, sel)
		if err != nil {
			lastErr = err
			continue
		}

		out.OK = true
		out.Value = value
		out.Winner = sel
		out.Healed = i != 0
		return out, nil
	}

	out.Failure = &SelectorNotFoundError{Selectors: selectors, LastErr: lastErr}
	return out, nil
}
