package browser

import "fmt"

// FrameResolutionError reports a failed hop while walking an iframe chain.
type FrameResolutionError struct {
	Selector string
	Err      error
}

func (e *FrameResolutionError) Error() string {
	return fmt.Sprintf("resolving frame %q: %v", e.Selector, e.Err)
}

func (e *FrameResolutionError) Unwrap() error { return e.Err }

// WindowSwitchError reports a switchToWindow target that could not be
// honored.
type WindowSwitchError struct {
	Target string
	Reason string
}

func (e *WindowSwitchError) Error() string {
	return fmt.Sprintf("switching to window %q: %s", e.Target, e.Reason)
}
