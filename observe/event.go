// Package observe carries per-operation events out of the rate limiter and the
// validator so callers can count, audit or log decisions without the
// primitives depending on any of those concerns.
package observe

import (
	"context"
	"fmt"
	"time"
)

// Op names a coordination operation.
type Op uint8

const (
	OpIsAllowed Op = iota
	OpRateLimitDelete
	OpRateLimitReset
	OpSetKeyValue
	OpUnrepeatable
	OpRepeatableUntilSuccessOrTimeout
	OpRepeatableUntilTimeout
	OpMarkSucceeded
	OpValidatorDelete
	opCount
)

var opNames = [opCount]string{
	OpIsAllowed:                       "is_allowed",
	OpRateLimitDelete:                 "rate_limit_delete",
	OpRateLimitReset:                  "rate_limit_reset",
	OpSetKeyValue:                     "set_key_value",
	OpUnrepeatable:                    "unrepeatable_validate",
	OpRepeatableUntilSuccessOrTimeout: "repeatable_until_success_or_timeout",
	OpRepeatableUntilTimeout:          "repeatable_until_timeout",
	OpMarkSucceeded:                   "mark_succeeded",
	OpValidatorDelete:                 "validator_delete",
}

func (o Op) String() string {
	if o >= opCount {
		return "unknown"
	}
	return opNames[o]
}

// MarshalText encodes the op by name.
func (o Op) MarshalText() ([]byte, error) {
	if o >= opCount {
		return nil, fmt.Errorf("observe: unknown op %d", uint8(o))
	}
	return []byte(opNames[o]), nil
}

func (o *Op) UnmarshalText(text []byte) error {
	for i, name := range opNames {
		if name == string(text) {
			*o = Op(i)
			return nil
		}
	}
	return fmt.Errorf("observe: unknown op %q", text)
}

// Event describes one finished operation. Allowed is the boolean outcome
// returned to the caller (for deletes: whether anything was removed). Err is
// set for invalid arguments and cache failures.
type Event struct {
	Op      Op
	Key     string
	Allowed bool
	Err     error
	Latency time.Duration
}

// Observer receives events synchronously on the caller's goroutine and must
// not block.
type Observer interface {
	Observe(ctx context.Context, ev Event)
}

// Func adapts a function to Observer.
type Func func(ctx context.Context, ev Event)

func (f Func) Observe(ctx context.Context, ev Event) {
	f(ctx, ev)
}

// Nop discards events.
type Nop struct{}

func (Nop) Observe(context.Context, Event) {}
