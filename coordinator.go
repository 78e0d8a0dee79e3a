package goCoord

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/MrEthical07/goCoord/internal/lua"
	"github.com/MrEthical07/goCoord/observe"
	"github.com/MrEthical07/goCoord/ratelimit"
	"github.com/MrEthical07/goCoord/validate"
	"github.com/redis/go-redis/v9"
)

// Coordinator owns the default Limiter and Validator and observes every
// operation they perform. All methods are safe for concurrent use.
type Coordinator struct {
	config Config
	redis  redis.UniversalClient
	logger *slog.Logger
	clock  func() time.Time

	metrics *Metrics
	audit   *auditDispatcher

	limiter   *ratelimit.Limiter
	validator *validate.Validator

	closed atomic.Bool
}

var _ observe.Observer = (*Coordinator)(nil)

// Limiter returns the limiter configured by Config.RateLimit.
func (c *Coordinator) Limiter() *ratelimit.Limiter {
	return c.limiter
}

func (c *Coordinator) Validator() *validate.Validator {
	return c.validator
}

// NewRateLimiter builds an additional limiter with its own rates that shares
// this Coordinator's client and instrumentation.
func (c *Coordinator) NewRateLimiter(replenishRate, burstCapacity int) (*ratelimit.Limiter, error) {
	if c.closed.Load() {
		return nil, ErrCoordinatorClosed
	}
	return c.newLimiter(replenishRate, burstCapacity)
}

// PreloadScripts issues SCRIPT LOAD for every script and returns the joined
// failures.
func (c *Coordinator) PreloadScripts(ctx context.Context) error {
	var errs []error
	for _, h := range lua.All() {
		if err := h.Load(ctx, c.redis); err != nil {
			errs = append(errs, fmt.Errorf("load %s: %w", h.Digest(), err))
		}
	}
	return errors.Join(errs...)
}

// Health pings the cache and reports whether every script is cached on the
// server.
func (c *Coordinator) Health(ctx context.Context) (scriptsLoaded bool, err error) {
	if err := c.redis.Ping(ctx).Err(); err != nil {
		return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
	}
	for _, h := range lua.All() {
		loaded, err := h.Loaded(ctx, c.redis)
		if err != nil {
			return false, fmt.Errorf("%w: %v", ErrRedisUnavailable, err)
		}
		if !loaded {
			return false, nil
		}
	}
	return true, nil
}

func (c *Coordinator) MetricsSnapshot() MetricsSnapshot {
	return c.metrics.Snapshot()
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (c *Coordinator) AuditDropped() uint64 {
	return c.audit.Dropped()
}

// Close flushes pending audit events. The Redis client belongs to the caller
// and is left open.
func (c *Coordinator) Close() {
	if c == nil || !c.closed.CompareAndSwap(false, true) {
		return
	}
	c.audit.Close()
}

// Observe records one finished operation. It is called by the limiters and
// the validator built by this Coordinator and never blocks when audit runs
// with DropIfFull.
func (c *Coordinator) Observe(ctx context.Context, ev observe.Event) {
	if ev.Latency > 0 {
		c.metrics.Observe(MetricScriptLatency, ev.Latency)
	}

	switch {
	case ev.Err == nil:
		if id, ok := outcomeMetric(ev.Op, ev.Allowed); ok {
			c.metrics.Inc(id)
		}
	case IsCacheFailure(ev.Err):
		c.metrics.Inc(MetricCacheFailure)
		c.logger.WarnContext(ctx, "cache operation failed",
			"op", ev.Op.String(),
			"error", ev.Err,
		)
	default:
		c.metrics.Inc(MetricInvalidArgument)
	}

	if c.audit != nil {
		c.audit.Emit(ctx, c.auditEvent(ctx, ev))
	}
}

func (c *Coordinator) auditEvent(ctx context.Context, ev observe.Event) AuditEvent {
	event := AuditEvent{
		Timestamp: c.clock(),
		Op:        ev.Op,
		Outcome:   outcomeOf(ev),
		RequestID: requestIDFromContext(ctx),
		IP:        clientIPFromContext(ctx),
		Allowed:   ev.Allowed,
		LatencyUS: ev.Latency.Microseconds(),
	}
	if c.config.Audit.IncludeKeys {
		event.Key = ev.Key
	}
	if ev.Err != nil {
		event.Error = ev.Err.Error()
	}
	return event
}

func outcomeMetric(op observe.Op, allowed bool) (MetricID, bool) {
	switch op {
	case observe.OpIsAllowed:
		if allowed {
			return MetricRateLimitAllowed, true
		}
		return MetricRateLimitDenied, true
	case observe.OpRateLimitDelete:
		return MetricRateLimitDeleted, allowed
	case observe.OpRateLimitReset:
		return MetricRateLimitReset, allowed
	case observe.OpSetKeyValue:
		return MetricValidationSet, true
	case observe.OpUnrepeatable:
		if allowed {
			return MetricUnrepeatablePassed, true
		}
		return MetricUnrepeatableRejected, true
	case observe.OpRepeatableUntilSuccessOrTimeout:
		if allowed {
			return MetricRepeatablePassed, true
		}
		return MetricRepeatableRejected, true
	case observe.OpMarkSucceeded:
		return MetricRepeatableSucceeded, allowed
	case observe.OpRepeatableUntilTimeout:
		if allowed {
			return MetricValueMatched, true
		}
		return MetricValueMismatched, true
	case observe.OpValidatorDelete:
		return MetricValidationDeleted, allowed
	default:
		return 0, false
	}
}
