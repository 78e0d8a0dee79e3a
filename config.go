package goCoord

import (
	"fmt"
	"time"
)

// Config is the full Coordinator configuration. Build it with DefaultConfig
// and override fields; it is copied on WithConfig and treated as immutable
// afterwards.
type Config struct {
	RateLimit  RateLimitConfig
	Validation ValidationConfig
	Scripts    ScriptConfig
	Audit      AuditConfig
	Metrics    MetricsConfig
}

/*
====================================
RATE LIMIT CONFIG
====================================
*/

// RateLimitConfig shapes the default limiter returned by Coordinator.Limiter.
type RateLimitConfig struct {
	ReplenishRate int // tokens per second
	BurstCapacity int
}

/*
====================================
VALIDATION CONFIG
====================================
*/

// ValidationConfig shapes the Validator returned by Coordinator.Validator.
type ValidationConfig struct {
	UnrepeatableTTL   time.Duration // 0 keeps records until deleted
	RepeatableWindow  time.Duration
	RepeatableTimeout time.Duration
	Retention         time.Duration
}

/*
====================================
SCRIPT CONFIG
====================================
*/

type ScriptConfig struct {
	// PreloadOnBuild issues SCRIPT LOAD for every script during Build. A
	// failed preload is logged; evaluation still falls back to EVAL.
	PreloadOnBuild bool
	PreloadTimeout time.Duration
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
	// IncludeKeys copies the caller's key into audit events. Keys often carry
	// user identifiers, so it is off by default.
	IncludeKeys bool
}

type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

// DefaultConfig returns a Config that passes Validate.
func DefaultConfig() Config {
	return Config{
		RateLimit: RateLimitConfig{
			ReplenishRate: 10,
			BurstCapacity: 20,
		},
		Validation: ValidationConfig{
			UnrepeatableTTL:   0,
			RepeatableWindow:  30 * time.Second,
			RepeatableTimeout: 5 * time.Minute,
			Retention:         10 * time.Minute,
		},
		Scripts: ScriptConfig{
			PreloadOnBuild: true,
			PreloadTimeout: 2 * time.Second,
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

// Validate checks every section and returns an error wrapping
// ErrInvalidConfig for the first violation found.
func (c *Config) Validate() error {
	// Rate limit
	if c.RateLimit.ReplenishRate < 1 {
		return invalid("RateLimit ReplenishRate must be >= 1")
	}
	if c.RateLimit.BurstCapacity < c.RateLimit.ReplenishRate {
		return invalid("RateLimit BurstCapacity must be >= ReplenishRate")
	}

	// Validation
	if c.Validation.UnrepeatableTTL < 0 {
		return invalid("Validation UnrepeatableTTL must be >= 0")
	}
	if c.Validation.RepeatableWindow <= 0 {
		return invalid("Validation RepeatableWindow must be > 0")
	}
	if c.Validation.RepeatableTimeout <= 0 {
		return invalid("Validation RepeatableTimeout must be > 0")
	}
	if c.Validation.RepeatableWindow > c.Validation.RepeatableTimeout {
		return invalid("Validation RepeatableWindow must be <= RepeatableTimeout")
	}
	if c.Validation.Retention <= 0 {
		return invalid("Validation Retention must be > 0")
	}

	if c.Scripts.PreloadOnBuild && c.Scripts.PreloadTimeout <= 0 {
		return invalid("Scripts PreloadTimeout must be > 0 when PreloadOnBuild is true")
	}

	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return invalid("Audit BufferSize must be > 0 when Audit is enabled")
	}
	if c.Metrics.EnableLatencyHistograms && !c.Metrics.Enabled {
		return invalid("Metrics EnableLatencyHistograms requires Metrics Enabled")
	}

	return nil
}

func invalid(msg string) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, msg)
}
