package locator

import (
	"strings"
	"sync"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

// Cache is a per-job read cache over the store. It avoids re-reading the
// same locators file for every step of one job; each job owns its own
// cache, so healed writes from sibling jobs become visible on their next
// run rather than mid-job.
type Cache struct {
	store  *Store
	mu     sync.Mutex
	groups map[string]map[string]*Group
}

func NewCache(store *Store) *Cache {
	return &Cache{
		store:  store,
		groups: make(map[string]map[string]*Group),
	}
}

// Groups returns the selector groups of an object folder, reading the file
// at most once per cache lifetime.
func (c *Cache) Groups(folder string) map[string]*Group {
	c.mu.Lock()
	defer c.mu.Unlock()

	if cached, ok := c.groups[folder]; ok {
		return cached
	}
	groups, err := c.store.Load(folder)
	if err != nil {
		groups = make(map[string]*Group)
	}
	c.groups[folder] = groups
	return groups
}

// ResolveStep replaces $-prefixed selector references in a step with the
// persisted selector group contents: the selectorRef (and a $-ref in the
// primary selector slot) expands to the full candidate list, while
// targetSelector and frame selectors take the group's primary candidate.
// The step is mutated in place; steps without references are untouched.
func (c *Cache) ResolveStep(step *parser.Step) {
	folder := step.ObjectFolderID
	if folder == "" {
		return
	}

	if isRef(step.SelectorRef) {
		if g := c.lookup(folder, step.SelectorRef); g != nil && len(g.Selectors) > 0 {
			step.Selectors = append([]string(nil), g.Selectors...)
		}
	}

	if len(step.Selectors) > 0 && isRef(step.Selectors[0]) {
		if g := c.lookup(folder, step.Selectors[0]); g != nil && len(g.Selectors) > 0 {
			step.Selectors = append([]string(nil), g.Selectors...)
		}
	}

	if isRef(step.TargetSelector) {
		if g := c.lookup(folder, step.TargetSelector); g != nil && len(g.Selectors) > 0 {
			step.TargetSelector = g.Selectors[0]
		}
	}

	for i := range step.FrameInfo {
		if isRef(step.FrameInfo[i].FrameSelector) {
			if g := c.lookup(folder, step.FrameInfo[i].FrameSelector); g != nil && len(g.Selectors) > 0 {
				step.FrameInfo[i].FrameSelector = g.Selectors[0]
			}
		}
	}
}

func (c *Cache) lookup(folder, ref string) *Group {
	return c.Groups(folder)[ref]
}

func isRef(s string) bool {
	return strings.HasPrefix(s, "$")
}
