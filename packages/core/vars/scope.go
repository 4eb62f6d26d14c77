package vars

import (
	"regexp"
	"strings"
	"sync"

	"github.com/avishekjana-89/flowright/packages/core/parser"
)

var (
	globalPattern = regexp.MustCompile(`\{\{\s*GlobalVariables\.([a-zA-Z0-9_]+)\s*\}\}`)
	localPattern  = regexp.MustCompile(`\{\{\s*LocalVariables\.([a-zA-Z0-9_\-]+)\s*\}\}`)
	funcPattern   = regexp.MustCompile(`\{\{\s*(\w+\([^{}]*\))\s*\}\}`)
)

// Scope is a per-job key-value store. Globals are shared, read-only profile
// values; locals are captured during the job and die with it.
type Scope struct {
	mu      sync.RWMutex
	globals map[string]string
	locals  map[string]string
	funcs   *FuncRegistry
}

// NewScope creates an empty scope over the given global values. The globals
// map is copied so callers may reuse theirs across jobs.
func NewScope(globals map[string]string) *Scope {
	s := &Scope{
		globals: make(map[string]string, len(globals)),
		locals:  make(map[string]string),
		funcs:   NewFuncRegistry(),
	}
	for k, v := range globals {
		s.globals[k] = v
	}
	return s
}

// Set records a job-local value.
func (s *Scope) Set(key, value string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locals[key] = value
}

// Get returns a job-local value.
func (s *Scope) Get(key string) (string, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.locals[key]
	return v, ok
}

// Locals returns a copy of the job-local values.
func (s *Scope) Locals() map[string]string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make(map[string]string, len(s.locals))
	for k, v := range s.locals {
		out[k] = v
	}
	return out
}

// Reset drops every job-local value. Called when the owning job ends, on
// both success and failure.
func (s *Scope) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.locals = make(map[string]string)
}

// Resolve substitutes globals, then locals, then built-in function calls in
// a single string. Unknown keys resolve to the empty string; unknown
// function calls are left untouched.
func (s *Scope) Resolve(in string) string {
	if !strings.Contains(in, "{{") {
		return in
	}

	out := globalPattern.ReplaceAllStringFunc(in, func(match string) string {
		key := globalPattern.FindStringSubmatch(match)[1]
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.globals[key]
	})

	out = localPattern.ReplaceAllStringFunc(out, func(match string) string {
		key := localPattern.FindStringSubmatch(match)[1]
		s.mu.RLock()
		defer s.mu.RUnlock()
		return s.locals[key]
	})

	return funcPattern.ReplaceAllStringFunc(out, func(match string) string {
		expr := strings.TrimSpace(match[2 : len(match)-2])
		if result, ok := s.funcs.Call(expr); ok {
			return result
		}
		return match
	})
}

// SubstituteStep returns a copy of the step with every string field
// resolved: value, url, selectors, targetSelector, attributeName and frame
// selectors. The input step is not mutated.
func (s *Scope) SubstituteStep(step *parser.Step) *parser.Step {
	out := step.Clone()
	out.Value = s.Resolve(out.Value)
	out.URL = s.Resolve(out.URL)
	out.TargetSelector = s.Resolve(out.TargetSelector)
	out.AttributeName = s.Resolve(out.AttributeName)
	for i, sel := range out.Selectors {
		out.Selectors[i] = s.Resolve(sel)
	}
	for i := range out.FrameInfo {
		out.FrameInfo[i].FrameSelector = s.Resolve(out.FrameInfo[i].FrameSelector)
	}
	return out
}
