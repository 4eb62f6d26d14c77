// Package vars provides per-job variable scoping and placeholder
// substitution for step fields.
//
// Two independent placeholder namespaces exist:
//   - {{GlobalVariables.KEY}} resolves against suite-wide profile values
//     supplied once per run
//   - {{LocalVariables.KEY}} resolves against values captured during the
//     owning job's execution (store_as captures, keyword results)
//
// A third form, {{fn(...)}}, calls a built-in substitution function such as
// uuid() or randomString(12).
//
// A Scope lives exactly as long as one job execution. Concurrent jobs hold
// distinct scopes, so a capture in one job is never observable from another.
package vars
