// Package browser drives Chrome DevTools Protocol sessions for test jobs.
//
// It implements the runner's StepExecutor contract on top of chromedp:
// launching browsers, keeping per-job session state (current tab and
// iframe scope), dispatching declarative step actions, and feeding healed
// selector orderings back into the locator store.
package browser
