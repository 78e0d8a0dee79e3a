// Package internal holds helpers that are private to goCoord.
//
// # Sub-packages
//
//   - config: environment-driven settings and redis client construction for the commands
//   - lua: the embedded server-side scripts and their handles
//
// # What this package must NOT do
//
//   - Export types that appear in the public goCoord API.
//   - Be imported by any package outside the goCoord module.
package internal
