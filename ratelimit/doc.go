// Package ratelimit provides a distributed token-bucket rate limiter whose
// check-and-consume step runs as one Lua script inside Redis.
//
// # Bucket state
//
// Each limit key owns two string entries:
//   - TB_RLI_<key>_TKS: remaining tokens (float)
//   - TB_RLI_<key>_TST: last refill time (epoch seconds, caller clock)
//
// Both are rewritten with a fresh TTL of ceil(2 × burst / rate) seconds on
// every check, so abandoned buckets are reclaimed by Redis.
//
// # Failure policy
//
// A cache failure or a nil reply never admits a request: [Limiter.IsAllowed]
// returns false and [Limiter.Allow] returns the wrapped error alongside.
//
// # What this package must NOT do
//
//   - Keep bucket state in process.
//   - Retry failed evaluations.
package ratelimit
