package ratelimit

import (
	"time"

	"github.com/MrEthical07/goCoord/observe"
)

// Option customizes a Limiter.
type Option func(*Limiter)

// WithClock replaces time.Now as the source of the admission timestamp.
func WithClock(now func() time.Time) Option {
	return func(l *Limiter) {
		if now != nil {
			l.now = now
		}
	}
}

// WithObserver receives one event per operation.
func WithObserver(o observe.Observer) Option {
	return func(l *Limiter) {
		if o != nil {
			l.observer = o
		}
	}
}
