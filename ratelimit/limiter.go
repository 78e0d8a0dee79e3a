package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goCoord/internal/lua"
	"github.com/MrEthical07/goCoord/observe"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "TB_RLI_"
	tokenSuffix = "_TKS"
	stampSuffix = "_TST"
)

// Limiter is a stateless façade over a Redis-resident token bucket. It holds
// only its two rates and the client, and is safe for concurrent use.
type Limiter struct {
	redis         redis.UniversalClient
	replenishRate int
	burstCapacity int

	// pre-rendered script arguments
	rateArg     string
	capacityArg string

	now      func() time.Time
	observer observe.Observer
}

// New creates a Limiter that replenishes replenishRate tokens per second up to
// burstCapacity tokens.
func New(redisClient redis.UniversalClient, replenishRate, burstCapacity int, opts ...Option) (*Limiter, error) {
	if redisClient == nil {
		return nil, ErrNilClient
	}
	if replenishRate < 1 || burstCapacity < replenishRate {
		return nil, ErrInvalidRate
	}

	l := &Limiter{
		redis:         redisClient,
		replenishRate: replenishRate,
		burstCapacity: burstCapacity,
		rateArg:       strconv.Itoa(replenishRate),
		capacityArg:   strconv.Itoa(burstCapacity),
		now:           time.Now,
		observer:      observe.Nop{},
	}
	for _, opt := range opts {
		opt(l)
	}

	return l, nil
}

func (l *Limiter) ReplenishRate() int { return l.replenishRate }
func (l *Limiter) BurstCapacity() int { return l.burstCapacity }

// Keys returns the tokens and timestamp keys backing limitKey.
func Keys(limitKey string) (tokens, timestamp string) {
	prefix := keyPrefix + limitKey
	return prefix + tokenSuffix, prefix + stampSuffix
}

// Allow consumes one token for limitKey if one is available. The decision is
// made atomically by Redis. On a cache failure it returns false and an error
// wrapping ErrRedisUnavailable; a nil reply is a plain denial.
func (l *Limiter) Allow(ctx context.Context, limitKey string) (bool, error) {
	start := time.Now()
	tokensKey, stampKey := Keys(limitKey)
	nowArg := strconv.FormatInt(l.now().Unix(), 10)

	allowed, err := lua.TokenBucket.RunBool(ctx, l.redis,
		[]string{tokensKey, stampKey},
		l.rateArg, l.capacityArg, nowArg,
	)
	switch {
	case errors.Is(err, redis.Nil):
		allowed, err = false, nil
	case err != nil:
		allowed, err = false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	l.observer.Observe(ctx, observe.Event{
		Op:      observe.OpIsAllowed,
		Key:     limitKey,
		Allowed: allowed,
		Err:     err,
		Latency: time.Since(start),
	})
	return allowed, err
}

// IsAllowed reports whether a request for limitKey is admitted. Any failure
// is a denial.
func (l *Limiter) IsAllowed(ctx context.Context, limitKey string) bool {
	allowed, _ := l.Allow(ctx, limitKey)
	return allowed
}

// Delete removes a single literal key and reports whether it existed. Use
// Reset to clear both entries of a bucket.
func (l *Limiter) Delete(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		l.observer.Observe(ctx, observe.Event{Op: observe.OpRateLimitDelete, Key: key, Err: ErrBadRequest})
		return false, ErrBadRequest
	}
	return l.del(ctx, observe.OpRateLimitDelete, key, key)
}

// Reset deletes the tokens and timestamp entries of limitKey in one command.
func (l *Limiter) Reset(ctx context.Context, limitKey string) (bool, error) {
	if strings.TrimSpace(limitKey) == "" {
		l.observer.Observe(ctx, observe.Event{Op: observe.OpRateLimitReset, Key: limitKey, Err: ErrBadRequest})
		return false, ErrBadRequest
	}
	tokensKey, stampKey := Keys(limitKey)
	return l.del(ctx, observe.OpRateLimitReset, limitKey, tokensKey, stampKey)
}

func (l *Limiter) del(ctx context.Context, op observe.Op, name string, keys ...string) (bool, error) {
	start := time.Now()
	removed, err := l.redis.Del(ctx, keys...).Result()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	deleted := err == nil && removed > 0

	l.observer.Observe(ctx, observe.Event{
		Op:      op,
		Key:     name,
		Allowed: deleted,
		Err:     err,
		Latency: time.Since(start),
	})
	return deleted, err
}
