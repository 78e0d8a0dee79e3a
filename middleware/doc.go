// Package middleware adapts the rate limiter and the validator to net/http.
//
//   - [RateLimit] answers 429 when the caller's bucket is empty.
//   - [Idempotency] answers 409 when an Idempotency-Key is presented twice.
//   - [RequestContext] attaches the client IP and a request id for audit.
//
// # What this package must NOT do
//
//   - Talk to Redis itself; every decision is delegated to the primitives.
//   - Let a request through when the decision could not be made.
package middleware
