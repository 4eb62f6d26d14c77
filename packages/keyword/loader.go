package keyword

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/avishekjana-89/flowright/packages/core/parser"
	"github.com/avishekjana-89/flowright/packages/core/vars"
	"gopkg.in/yaml.v3"
)

// Definition is one declarative keyword: a named sequence of built-in
// steps, optionally exporting values into the job's variable scope.
type Definition struct {
	Name        string                 `yaml:"name" json:"name"`
	Description string                 `yaml:"description,omitempty" json:"description,omitempty"`
	Override    bool                   `yaml:"override,omitempty" json:"override,omitempty"`
	Steps       []*parser.Step         `yaml:"steps" json:"steps"`
	Returns     map[string]interface{} `yaml:"returns,omitempty" json:"returns,omitempty"`
}

// UnsafeKeywordSourceError reports that the pre-execution filter rejected a
// definition file.
type UnsafeKeywordSourceError struct {
	Path    string
	Reasons []string
}

func (e *UnsafeKeywordSourceError) Error() string {
	return fmt.Sprintf("unsafe keyword source %s: %s", e.Path, strings.Join(e.Reasons, "; "))
}

// disallowedActions are step kinds a loaded definition may never invoke,
// even if a future built-in adopts one of these names.
var disallowedActions = map[string]bool{
	"exec":       true,
	"evalScript": true,
	"evaluate":   true,
	"shell":      true,
	"readFile":   true,
	"writeFile":  true,
	"open":       true,
	"import":     true,
	// switchToWindow mutates job-level page state, which composite
	// handlers have no access to.
	parser.ActionSwitchToWindow: true,
}

// CheckDefinition applies the conservative safety filter to a parsed
// definition. Returned reasons are empty when the definition passes.
func CheckDefinition(def *Definition) []string {
	var reasons []string

	if def.Name == "" {
		reasons = append(reasons, "keyword name is required")
	}
	if strings.HasPrefix(def.Name, "__") {
		reasons = append(reasons, "reserved name: "+def.Name)
	}
	if parser.IsBuiltinAction(def.Name) {
		reasons = append(reasons, "name shadows a built-in action: "+def.Name)
	}
	if len(def.Steps) == 0 {
		reasons = append(reasons, "keyword defines no steps")
	}

	for i, step := range def.Steps {
		switch {
		case disallowedActions[step.Action]:
			reasons = append(reasons, fmt.Sprintf("step %d: action %q is not allowed", i, step.Action))
		case !parser.IsBuiltinAction(step.Action):
			reasons = append(reasons, fmt.Sprintf("step %d: action %q is outside the built-in whitelist", i, step.Action))
		}
		if strings.HasPrefix(step.StoreAs, "__") {
			reasons = append(reasons, fmt.Sprintf("step %d: reserved store_as name %q", i, step.StoreAs))
		}
		for _, field := range []string{step.Value, step.URL, step.TargetSelector, step.AttributeName} {
			if refersToReserved(field) {
				reasons = append(reasons, fmt.Sprintf("step %d: reserved name reference in %q", i, field))
			}
		}
		for _, sel := range step.Selectors {
			if refersToReserved(sel) {
				reasons = append(reasons, fmt.Sprintf("step %d: reserved name reference in %q", i, sel))
			}
		}
	}

	for k := range def.Returns {
		if strings.HasPrefix(k, "__") || reservedResultKeys[k] && k != "success" {
			reasons = append(reasons, "reserved return key: "+k)
		}
	}

	return reasons
}

// refersToReserved reports whether a placeholder references a dunder-style
// name, e.g. {{LocalVariables.__proto}}.
func refersToReserved(s string) bool {
	for _, idx := range []string{"{{LocalVariables.__", "{{GlobalVariables.__", "{{__"} {
		if strings.Contains(s, idx) {
			return true
		}
	}
	return false
}

// StepRunner executes one built-in step inside the owning job's tab
// context. The browser executor supplies the implementation.
type StepRunner func(ctx context.Context, step *parser.Step, scope *vars.Scope) (any, error)

// LoadResult reports what a directory scan registered.
type LoadResult struct {
	Loaded []string
	Errors map[string]error
}

// Loader reads keyword definition files from a directory and registers
// composite handlers for them.
type Loader struct {
	registry *Registry
	dir      string
	runStep  StepRunner
	logf     func(format string, args ...any)
}

// LoaderOption configures a Loader.
type LoaderOption func(*Loader)

func WithLoaderLogf(logf func(format string, args ...any)) LoaderOption {
	return func(l *Loader) { l.logf = logf }
}

func NewLoader(registry *Registry, dir string, runStep StepRunner, opts ...LoaderOption) *Loader {
	l := &Loader{
		registry: registry,
		dir:      dir,
		runStep:  runStep,
		logf:     func(string, ...any) {},
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

func isKeywordFile(name string) bool {
	for _, suffix := range []string{".keyword.yaml", ".keyword.yml", ".keyword.json"} {
		if strings.HasSuffix(name, suffix) {
			return true
		}
	}
	return false
}

// LoadAll scans the directory and registers every definition that passes
// the safety filter. Files that fail land in the result's error map; they
// never abort the scan.
func (l *Loader) LoadAll() *LoadResult {
	result := &LoadResult{Errors: make(map[string]error)}

	entries, err := os.ReadDir(l.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return result
		}
		result.Errors[l.dir] = err
		return result
	}

	for _, e := range entries {
		if e.IsDir() || !isKeywordFile(e.Name()) {
			continue
		}
		path := filepath.Join(l.dir, e.Name())
		def, err := l.LoadFile(path)
		if err != nil {
			l.logf("keyword loader: %v", err)
			result.Errors[path] = err
			continue
		}
		result.Loaded = append(result.Loaded, def.Name)
	}
	return result
}

// LoadFile parses, filters and registers a single definition file.
func (l *Loader) LoadFile(path string) (*Definition, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	def := &Definition{}
	if strings.HasSuffix(path, ".json") {
		err = json.Unmarshal(data, def)
	} else {
		err = yaml.Unmarshal(data, def)
	}
	if err != nil {
		return nil, &UnsafeKeywordSourceError{Path: path, Reasons: []string{"parse error: " + err.Error()}}
	}

	if reasons := CheckDefinition(def); len(reasons) > 0 {
		return nil, &UnsafeKeywordSourceError{Path: path, Reasons: reasons}
	}

	handler := l.compositeHandler(def)
	meta := Metadata{Description: def.Description, Source: path}
	if err := l.registry.Register(def.Name, handler, meta, def.Override); err != nil {
		return nil, err
	}
	return def, nil
}

// compositeHandler turns a definition into a Handler that runs the defined
// steps sequentially in the invoking job's tab context.
func (l *Loader) compositeHandler(def *Definition) Handler {
	return func(ctx context.Context, _ *parser.Step, scope *vars.Scope) (any, error) {
		for i, tpl := range def.Steps {
			step := scope.SubstituteStep(tpl)
			if _, err := l.runStep(ctx, step, scope); err != nil {
				return map[string]any{
					"success": false,
					"message": fmt.Sprintf("%s step %d (%s): %v", def.Name, i, step.Action, err),
				}, nil
			}
		}

		if len(def.Returns) == 0 {
			return true, nil
		}
		result := make(map[string]any, len(def.Returns))
		for k, v := range def.Returns {
			if s, ok := v.(string); ok {
				result[k] = scope.Resolve(s)
			} else {
				result[k] = v
			}
		}
		return result, nil
	}
}
