package keyword

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
)

// Handler executes one custom action. ctx is the owning job's browser tab
// context, so handlers can issue chromedp actions directly against it.
type Handler func(ctx context.Context, step *parser.Step, scope *vars.Scope) (any, error)

// Metadata describes a registered keyword.
type Metadata struct {
	Description string
	Source      string // file the keyword was loaded from, empty for Go-registered handlers
}

// DuplicateKeywordError reports a registration conflict without override.
type DuplicateKeywordError struct {
	Name string
}

func (e *DuplicateKeywordError) Error() string {
	return fmt.Sprintf("keyword already registered: %s", e.Name)
}

type entry struct {
	handler Handler
	meta    Metadata
}

// Registry is a process-wide name→handler table, safe for concurrent
// registration and lookup. It is constructed once at process start and
// passed by reference into the orchestrator and the loader.
type Registry struct {
	mu       sync.Mutex
	handlers map[string]*entry
}

func NewRegistry() *Registry {
	return &Registry{handlers: make(map[string]*entry)}
}

// Register adds a handler. Registering an existing name fails with
// DuplicateKeywordError unless override is set, in which case the prior
// handler is replaced.
func (r *Registry) Register(name string, h Handler, meta Metadata, override bool) error {
	if name == "" {
		return fmt.Errorf("keyword name must not be empty")
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.handlers[name]; exists && !override {
		return &DuplicateKeywordError{Name: name}
	}
	r.handlers[name] = &entry{handler: h, meta: meta}
	return nil
}

// Get returns the handler registered under name.
func (r *Registry) Get(name string) (Handler, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	e, ok := r.handlers[name]
	if !ok {
		return nil, false
	}
	return e.handler, true
}

// Unregister removes a keyword. Used when reloading a definition directory.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.handlers, name)
}

// List returns registered keyword names with metadata, sorted by name.
func (r *Registry) List() []struct {
	Name string
	Meta Metadata
} {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]struct {
		Name string
		Meta Metadata
	}, 0, len(r.handlers))
	for name, e := range r.handlers {
		out = append(out, struct {
			Name string
			Meta Metadata
		}{name, e.meta})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// reservedResultKeys are never merged into the variable scope.
var reservedResultKeys = map[string]bool{
	"success": true,
	"ok":      true,
	"error":   true,
	"message": true,
}

// ApplyResult interprets a handler return value. Map results merge every
// non-reserved key into the scope, and overall success comes from the
// "success" key (default true). Any other result is judged by truthiness;
// a nil result counts as success since Go handlers report failure through
// their error return.
func ApplyResult(result any, scope *vars.Scope) bool {
	switch v := result.(type) {
	case nil:
		return true
	case bool:
		return v
	case string:
		return v != ""
	case map[string]any:
		for k, val := range v {
			if !reservedResultKeys[k] {
				scope.Set(k, fmt.Sprint(val))
			}
		}
		if success, ok := v["success"]; ok {
			return ApplyResult(success, scope)
		}
		return true
	default:
		return true
	}
}

// Invoke runs a handler and folds its return value into the scope,
// returning overall success. Handler errors are failures.
func Invoke(ctx context.Context, h Handler, step *parser.Step, scope *vars.Scope) (bool, any, error) {
	result, err := h(ctx, step, scope)
	if err != nil {
		return false, nil, err
	}
	return ApplyResult(result, scope), result, nil
}
