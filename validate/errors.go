package validate

import "errors"

var (
	// ErrNilClient is returned by New when no Redis client is supplied.
	ErrNilClient = errors.New("validate: redis client can't be nil")
	// ErrInvalidConfig is returned by New for non-positive windows or timeouts.
	ErrInvalidConfig = errors.New("validate: invalid configuration")
	// ErrEmptyParam is returned for an empty key or value before any round trip.
	ErrEmptyParam = errors.New("validate: empty param")
	// ErrInvalidExpire is returned when an expiry is missing or not positive.
	ErrInvalidExpire = errors.New("validate: expire can't be empty")
	// ErrRedisUnavailable wraps cache-layer failures.
	ErrRedisUnavailable = errors.New("validate: redis unavailable")
)
