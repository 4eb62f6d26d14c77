// Package keyword implements the custom-action registry and the safety
// filtered loading of keyword definitions.
//
// A keyword is a named handler invoked for any step whose action is not a
// built-in. Handlers registered from Go code are arbitrary functions;
// handlers loaded from a keyword directory are declarative compositions of
// built-in steps, parsed from *.keyword.yaml / *.keyword.json files.
//
// Loaded definitions pass a conservative pre-execution filter: disallowed
// action kinds are rejected, actions outside the built-in whitelist are
// rejected, and reserved dunder-style names are rejected. The filter is a
// defense-in-depth gate, not an isolation boundary; genuinely untrusted
// definitions need a separate process or sandbox.
package keyword
