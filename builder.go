package goCoord

import (
	"context"
	"log/slog"
	"time"

	"github.com/MrEthical07/goCoord/ratelimit"
	"github.com/MrEthical07/goCoord/validate"
	"github.com/redis/go-redis/v9"
)

// Builder assembles a Coordinator. A Builder is single-use and not safe for
// concurrent use.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	auditSink AuditSink
	logger    *slog.Logger
	clock     func() time.Time

	built bool
}

// New returns a Builder seeded with DefaultConfig.
func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the shared cache client. Any go-redis client works: a single
// node, a cluster client or a failover client.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithAuditSink sets where audit events go when Config.Audit.Enabled is true.
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the logger for best-effort failures. Defaults to
// slog.Default().
func (b *Builder) WithLogger(logger *slog.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock replaces time.Now for token-bucket timestamps, repeatable
// deadlines and audit timestamps.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.clock = now
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration, optionally preloads every script and
// returns a ready Coordinator.
func (b *Builder) Build() (*Coordinator, error) {
	if b.built {
		return nil, ErrBuilderUsed
	}
	if b.redis == nil {
		return nil, ErrRedisRequired
	}

	cfg := b.config
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = slog.Default()
	}
	clock := b.clock
	if clock == nil {
		clock = time.Now
	}

	c := &Coordinator{
		config:  cfg,
		redis:   b.redis,
		logger:  logger.With("component", "goCoord"),
		clock:   clock,
		metrics: NewMetrics(cfg.Metrics),
		audit:   newAuditDispatcher(cfg.Audit, b.auditSink),
	}

	limiter, err := c.newLimiter(cfg.RateLimit.ReplenishRate, cfg.RateLimit.BurstCapacity)
	if err != nil {
		c.audit.Close()
		return nil, err
	}
	c.limiter = limiter

	validator, err := validate.New(b.redis,
		validate.WithUnrepeatableTTL(cfg.Validation.UnrepeatableTTL),
		validate.WithRepeatableWindow(cfg.Validation.RepeatableWindow),
		validate.WithRepeatableTimeout(cfg.Validation.RepeatableTimeout),
		validate.WithRetention(cfg.Validation.Retention),
		validate.WithClock(clock),
		validate.WithObserver(c),
	)
	if err != nil {
		c.audit.Close()
		return nil, err
	}
	c.validator = validator

	if cfg.Scripts.PreloadOnBuild {
		ctx, cancel := context.WithTimeout(context.Background(), cfg.Scripts.PreloadTimeout)
		if err := c.PreloadScripts(ctx); err != nil {
			// EVALSHA falls back to EVAL, so a cold cache only costs bandwidth.
			c.logger.Warn("script preload failed", "error", err)
		}
		cancel()
	}

	b.built = true

	return c, nil
}

func (c *Coordinator) newLimiter(rate, burst int) (*ratelimit.Limiter, error) {
	return ratelimit.New(c.redis, rate, burst,
		ratelimit.WithClock(c.clock),
		ratelimit.WithObserver(c),
	)
}
