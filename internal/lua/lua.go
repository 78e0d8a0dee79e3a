// Package lua holds the server-side script bodies evaluated by the rate
// limiter and the validator.
//
// Every script is a single atomic unit on the server; callers must never split
// one into separate commands.
package lua

import (
	_ "embed"

	"github.com/MrEthical07/goCoord/script"
)

var (
	//go:embed token_bucket.lua
	tokenBucketSource string

	//go:embed unrepeatable.lua
	unrepeatableSource string

	//go:embed repeatable.lua
	repeatableSource string

	//go:embed repeatable_succeeded.lua
	repeatableSucceededSource string
)

var (
	// TokenBucket admits one request per call when a token is available.
	TokenBucket = script.MustNew(tokenBucketSource, script.KindBoolean)
	// Unrepeatable records a value the first time a key is seen.
	Unrepeatable = script.MustNew(unrepeatableSource, script.KindBoolean)
	// Repeatable gates retries until success or timeout.
	Repeatable = script.MustNew(repeatableSource, script.KindBoolean)
	// RepeatableSucceeded moves a pending repeatable gate to success.
	RepeatableSucceeded = script.MustNew(repeatableSucceededSource, script.KindBoolean)
)

// All returns every script handle, for preloading.
func All() []*script.Handle {
	return []*script.Handle{TokenBucket, Unrepeatable, Repeatable, RepeatableSucceeded}
}
