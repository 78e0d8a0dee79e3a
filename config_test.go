package goCoord

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigIsValid(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("default config must validate: %v", err)
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "rate equals burst",
			mutate:    func(c *Config) { c.RateLimit.ReplenishRate, c.RateLimit.BurstCapacity = 5, 5 },
			wantValid: true,
		},
		{
			name:      "zero rate",
			mutate:    func(c *Config) { c.RateLimit.ReplenishRate = 0 },
			wantValid: false,
		},
		{
			name:      "burst below rate",
			mutate:    func(c *Config) { c.RateLimit.ReplenishRate, c.RateLimit.BurstCapacity = 5, 4 },
			wantValid: false,
		},
		{
			name:      "negative unrepeatable ttl",
			mutate:    func(c *Config) { c.Validation.UnrepeatableTTL = -time.Second },
			wantValid: false,
		},
		{
			name:      "unrepeatable ttl set",
			mutate:    func(c *Config) { c.Validation.UnrepeatableTTL = time.Hour },
			wantValid: true,
		},
		{
			name:      "zero window",
			mutate:    func(c *Config) { c.Validation.RepeatableWindow = 0 },
			wantValid: false,
		},
		{
			name:      "window longer than timeout",
			mutate:    func(c *Config) { c.Validation.RepeatableWindow = 10 * time.Minute },
			wantValid: false,
		},
		{
			name:      "zero retention",
			mutate:    func(c *Config) { c.Validation.Retention = 0 },
			wantValid: false,
		},
		{
			name:      "preload without timeout",
			mutate:    func(c *Config) { c.Scripts.PreloadTimeout = 0 },
			wantValid: false,
		},
		{
			name: "no preload without timeout",
			mutate: func(c *Config) {
				c.Scripts.PreloadOnBuild = false
				c.Scripts.PreloadTimeout = 0
			},
			wantValid: true,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
		{
			name:      "histograms without metrics",
			mutate:    func(c *Config) { c.Metrics.EnableLatencyHistograms = true },
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid {
				if err == nil {
					t.Fatal("expected validation error")
				}
				if !errors.Is(err, ErrInvalidConfig) {
					t.Fatalf("expected ErrInvalidConfig, got %v", err)
				}
			}
		})
	}
}
