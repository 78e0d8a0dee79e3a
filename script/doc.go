// Package script provides the identity of server-side Lua scripts used by the
// coordination primitives.
//
// # Design
//
// A [Handle] carries the script source, its SHA-1 digest and a declared result
// kind. Evaluation sends EVALSHA on the common path and falls back to EVAL with
// the full body when the server reports NOSCRIPT (for example after a restart
// or SCRIPT FLUSH). Two handles with the same digest are interchangeable.
//
// # What this package must NOT do
//
//   - Hold per-key state or cache replies.
//   - Retry evaluations; a failed call is reported once to the caller.
package script
