// Package tokenguard issues and consumes single-use JWTs.
//
// A token is accepted by [Guard.Consume] at most once across every process
// sharing the cache: its jti is recorded with the validator's unrepeatable
// check, and the record lives until the token would have expired anyway.
//
// Only HS256 is supported; the secret is shared by issuers and consumers.
package tokenguard
