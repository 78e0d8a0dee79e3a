package validate

import (
	"time"

	"github.com/MrEthical07/goCoord/observe"
)

const (
	defaultRepeatableWindow  = 30 * time.Second
	defaultRepeatableTimeout = 5 * time.Minute
	defaultRetention         = 10 * time.Minute
)

// Option customizes a Validator.
type Option func(*Validator)

// WithUnrepeatableTTL bounds how long an unrepeatable record lives. Zero keeps
// records until they are deleted.
func WithUnrepeatableTTL(d time.Duration) Option {
	return func(v *Validator) { v.unrepeatableTTL = d }
}

// WithRepeatableWindow sets the lease re-armed by every permitted repeatable call.
func WithRepeatableWindow(d time.Duration) Option {
	return func(v *Validator) { v.window = d }
}

// WithRepeatableTimeout sets the absolute bound of a repeatable gate, measured
// from its first call.
func WithRepeatableTimeout(d time.Duration) Option {
	return func(v *Validator) { v.timeout = d }
}

// WithRetention sets how long a terminal repeatable state stays visible.
func WithRetention(d time.Duration) Option {
	return func(v *Validator) { v.retention = d }
}

// WithClock replaces time.Now for repeatable deadlines.
func WithClock(now func() time.Time) Option {
	return func(v *Validator) {
		if now != nil {
			v.now = now
		}
	}
}

// WithObserver receives one event per operation.
func WithObserver(o observe.Observer) Option {
	return func(v *Validator) {
		if o != nil {
			v.observer = o
		}
	}
}
