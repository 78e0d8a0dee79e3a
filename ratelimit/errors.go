package ratelimit

import "errors"

var (
	// ErrNilClient is returned by New when no Redis client is supplied.
	ErrNilClient = errors.New("ratelimit: redis client can't be nil")
	// ErrInvalidRate is returned by New when replenishRate < 1 or burstCapacity < replenishRate.
	ErrInvalidRate = errors.New("ratelimit: replenishRate and burstCapacity can't be less than 1, burstCapacity can't be less than replenishRate")
	// ErrBadRequest is returned for a blank key before any round trip.
	ErrBadRequest = errors.New("ratelimit: bad request")
	// ErrRedisUnavailable wraps cache-layer failures.
	ErrRedisUnavailable = errors.New("ratelimit: redis unavailable")
)
