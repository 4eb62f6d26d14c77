// Package locator implements self-healing selector resolution and the
// file-backed persistence of healed selector orderings.
//
// The resolver tries an ordered list of selector candidates against one
// action; the first candidate that succeeds wins. When the winner is not
// the primary candidate the attempt is reported as healed, and the store
// persists the promoted ordering into the object folder's locators.json so
// future runs try the working candidate first.
//
// The store survives concurrent healing from multiple jobs and processes:
// a per-key advisory lock serializes healing of the same logical element,
// and a second file-wide lock with a re-read guards against lost updates
// when different keys rewrite the same shared file. Writes go through a
// temp file with fsync and an atomic rename.
package locator
