package goCoord

import (
	"errors"

	"github.com/MrEthical07/goCoord/ratelimit"
	"github.com/MrEthical07/goCoord/validate"
)

var (
	// ErrRedisRequired is returned by Build when no client was supplied.
	ErrRedisRequired = errors.New("redis client required")
	// ErrBuilderUsed is returned when Build is called twice on the same Builder.
	ErrBuilderUsed = errors.New("builder already used")
	// ErrInvalidConfig wraps every Config.Validate failure.
	ErrInvalidConfig = errors.New("invalid config")
	// ErrCoordinatorClosed is returned by NewRateLimiter after Close.
	ErrCoordinatorClosed = errors.New("coordinator closed")
	// ErrRedisUnavailable wraps cache failures seen by the Coordinator itself.
	ErrRedisUnavailable = errors.New("redis unavailable")

	ErrInvalidRate   = ratelimit.ErrInvalidRate
	ErrBadRequest    = ratelimit.ErrBadRequest
	ErrEmptyParam    = validate.ErrEmptyParam
	ErrInvalidExpire = validate.ErrInvalidExpire
)

// IsCacheFailure reports whether err came from the cache layer rather than
// from argument validation.
func IsCacheFailure(err error) bool {
	return errors.Is(err, ErrRedisUnavailable) ||
		errors.Is(err, ratelimit.ErrRedisUnavailable) ||
		errors.Is(err, validate.ErrRedisUnavailable)
}

// IsInvalidArgument reports whether err was raised before any round trip
// because of a missing key, value or expiry.
func IsInvalidArgument(err error) bool {
	return errors.Is(err, ErrBadRequest) || errors.Is(err, ErrEmptyParam) || errors.Is(err, ErrInvalidExpire)
}
