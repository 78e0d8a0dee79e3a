package validate

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/MrEthical07/goCoord/internal/lua"
	"github.com/MrEthical07/goCoord/observe"
	"github.com/MrEthical07/goCoord/script"
	"github.com/redis/go-redis/v9"
)

const (
	keyPrefix   = "VK_"
	stateSuffix = "_STA"
)

// Validator is a stateless façade over namespaced validation records. It is
// safe for concurrent use.
type Validator struct {
	redis redis.UniversalClient

	unrepeatableTTL time.Duration
	window          time.Duration
	timeout         time.Duration
	retention       time.Duration

	now      func() time.Time
	observer observe.Observer
}

// New creates a Validator bound to redisClient.
func New(redisClient redis.UniversalClient, opts ...Option) (*Validator, error) {
	if redisClient == nil {
		return nil, ErrNilClient
	}

	v := &Validator{
		redis:     redisClient,
		window:    defaultRepeatableWindow,
		timeout:   defaultRepeatableTimeout,
		retention: defaultRetention,
		now:       time.Now,
		observer:  observe.Nop{},
	}
	for _, opt := range opts {
		opt(v)
	}

	if v.unrepeatableTTL < 0 {
		return nil, fmt.Errorf("%w: unrepeatable ttl must be >= 0", ErrInvalidConfig)
	}
	if v.window <= 0 || v.timeout <= 0 || v.retention <= 0 {
		return nil, fmt.Errorf("%w: repeatable window, timeout and retention must be > 0", ErrInvalidConfig)
	}

	return v, nil
}

// Keys returns the record key and the repeatable state key for key.
func Keys(key string) (record, state string) {
	record = keyPrefix + key
	return record, record + stateSuffix
}

// SetKeyValueWithExpire writes value under key with the given TTL. The write
// is unconditional (last writer wins); it establishes state, it does not guard.
func (v *Validator) SetKeyValueWithExpire(ctx context.Context, key, value string, expire time.Duration) error {
	if err := assertParam(key, value); err != nil {
		v.reject(ctx, observe.OpSetKeyValue, key, err)
		return err
	}
	if expire <= 0 {
		v.reject(ctx, observe.OpSetKeyValue, key, ErrInvalidExpire)
		return ErrInvalidExpire
	}

	start := time.Now()
	record, _ := Keys(key)
	err := v.redis.Set(ctx, record, value, expire).Err()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	v.observer.Observe(ctx, observe.Event{
		Op:      observe.OpSetKeyValue,
		Key:     key,
		Allowed: err == nil,
		Err:     err,
		Latency: time.Since(start),
	})
	return err
}

// UnRepeatableValidate returns true only for the first caller to present key
// while no record exists, recording value in the same atomic step. Every later
// call for key, with any value, returns false until the record expires or is
// deleted. The record lives for the configured unrepeatable TTL.
func (v *Validator) UnRepeatableValidate(ctx context.Context, key, value string) (bool, error) {
	return v.UnRepeatableValidateFor(ctx, key, value, v.unrepeatableTTL)
}

// UnRepeatableValidateFor is UnRepeatableValidate with an explicit record TTL.
// A zero ttl keeps the record until it is deleted.
func (v *Validator) UnRepeatableValidateFor(ctx context.Context, key, value string, ttl time.Duration) (bool, error) {
	if err := assertParam(key, value); err != nil {
		v.reject(ctx, observe.OpUnrepeatable, key, err)
		return false, err
	}
	if ttl < 0 {
		v.reject(ctx, observe.OpUnrepeatable, key, ErrInvalidExpire)
		return false, ErrInvalidExpire
	}

	record, _ := Keys(key)
	return v.run(ctx, observe.OpUnrepeatable, key, lua.Unrepeatable,
		[]string{record},
		value, formatMs(ttl),
	)
}

// RepeatableValidateUntilSuccessOrTimeout returns true while the gate for key
// is pending and its record is absent or holds value, re-arming the record's
// window on each call. It returns false once the gate has been marked
// succeeded, once its timeout has elapsed, or while another value holds it.
func (v *Validator) RepeatableValidateUntilSuccessOrTimeout(ctx context.Context, key, value string) (bool, error) {
	if err := assertParam(key, value); err != nil {
		v.reject(ctx, observe.OpRepeatableUntilSuccessOrTimeout, key, err)
		return false, err
	}

	record, state := Keys(key)
	return v.run(ctx, observe.OpRepeatableUntilSuccessOrTimeout, key, lua.Repeatable,
		[]string{record, state},
		value,
		strconv.FormatInt(v.now().UnixMilli(), 10),
		formatMs(v.window),
		formatMs(v.timeout),
		formatMs(v.retention),
	)
}

// MarkSucceeded records that the operation guarded by a pending repeatable
// gate completed. It returns true only if the gate was pending and held value.
func (v *Validator) MarkSucceeded(ctx context.Context, key, value string) (bool, error) {
	if err := assertParam(key, value); err != nil {
		v.reject(ctx, observe.OpMarkSucceeded, key, err)
		return false, err
	}

	record, state := Keys(key)
	return v.run(ctx, observe.OpMarkSucceeded, key, lua.RepeatableSucceeded,
		[]string{record, state},
		value, formatMs(v.retention),
	)
}

// RepeatableValidateUntilTimeout reports whether the record under key equals
// value. It is a pure read: no TTL is touched.
func (v *Validator) RepeatableValidateUntilTimeout(ctx context.Context, key, value string) (bool, error) {
	if err := assertParam(key, value); err != nil {
		v.reject(ctx, observe.OpRepeatableUntilTimeout, key, err)
		return false, err
	}

	start := time.Now()
	record, _ := Keys(key)
	stored, err := v.redis.Get(ctx, record).Result()

	var matched bool
	switch {
	case errors.Is(err, redis.Nil):
		err = nil
	case err != nil:
		err = fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	default:
		matched = stored == value
	}

	v.observer.Observe(ctx, observe.Event{
		Op:      observe.OpRepeatableUntilTimeout,
		Key:     key,
		Allowed: matched,
		Err:     err,
		Latency: time.Since(start),
	})
	return matched, err
}

// Delete removes the record for key together with any repeatable state and
// reports whether anything was removed. key is the caller's key, not the
// namespaced one: Delete(ctx, "order-1") removes VK_order-1 and VK_order-1_STA.
func (v *Validator) Delete(ctx context.Context, key string) (bool, error) {
	if strings.TrimSpace(key) == "" {
		v.reject(ctx, observe.OpValidatorDelete, key, ErrEmptyParam)
		return false, ErrEmptyParam
	}

	start := time.Now()
	record, state := Keys(key)
	removed, err := v.redis.Del(ctx, record, state).Result()
	if err != nil {
		err = fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	deleted := err == nil && removed > 0

	v.observer.Observe(ctx, observe.Event{
		Op:      observe.OpValidatorDelete,
		Key:     key,
		Allowed: deleted,
		Err:     err,
		Latency: time.Since(start),
	})
	return deleted, err
}

func (v *Validator) run(ctx context.Context, op observe.Op, key string, h *script.Handle, keys []string, args ...interface{}) (bool, error) {
	start := time.Now()
	ok, err := h.RunBool(ctx, v.redis, keys, args...)
	switch {
	case errors.Is(err, redis.Nil):
		ok, err = false, nil
	case err != nil:
		ok, err = false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}

	v.observer.Observe(ctx, observe.Event{
		Op:      op,
		Key:     key,
		Allowed: ok,
		Err:     err,
		Latency: time.Since(start),
	})
	return ok, err
}

func (v *Validator) reject(ctx context.Context, op observe.Op, key string, err error) {
	v.observer.Observe(ctx, observe.Event{Op: op, Key: key, Err: err})
}

// formatMs renders d as whole milliseconds for the scripts. A positive
// duration under 1ms becomes 1 so it never reads as "no expiry".
func formatMs(d time.Duration) string {
	if d > 0 && d < time.Millisecond {
		return "1"
	}
	return strconv.FormatInt(d.Milliseconds(), 10)
}

func assertParam(key, value string) error {
	if key == "" || value == "" {
		return ErrEmptyParam
	}
	return nil
}
