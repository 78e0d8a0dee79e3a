// Package goCoord provides distributed coordination primitives on a shared
// Redis-compatible cache: a token-bucket rate limiter and an idempotency
// validator, each decided by one atomic server-side Lua script.
//
// The primitives live in their own packages ([ratelimit], [validate]) and can
// be used alone. This package wires them together behind [Builder] and
// [Coordinator], adding metrics, audit dispatch and structured logging.
//
// # Architecture boundaries
//
// goCoord is the instrumented surface. Script identity lives in script,
// script bodies in internal/lua, and the per-operation event contract in
// observe. Nothing under internal/ is exported.
//
// # What this package must NOT do
//
//   - Retry a failed cache operation or report it as success.
//   - Perform I/O during construction other than the optional script preload
//     in [Builder.Build].
//   - Block a caller on metrics, audit or logging.
//
// # Performance contract
//
// Every check-and-mutate is exactly one Redis round trip. Observation happens
// on the caller's goroutine and is limited to atomic increments plus a
// non-blocking channel send when audit is enabled.
package goCoord
