// Package config loads the example server's settings from the environment,
// reading a .env file first when one exists.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	goCoord "github.com/MrEthical07/goCoord"
)

type Config struct {
	Server      ServerConfig
	Redis       RedisConfig
	Coordinator goCoord.Config
	Tokens      TokenConfig
}

type ServerConfig struct {
	Port           string
	TrustForwarded bool
	LogLevel       string
}

// RedisConfig selects how the cache is reached. Mode is one of single,
// cluster, sentinel or memory; memory runs an in-process server.
type RedisConfig struct {
	Mode       string
	Addrs      []string
	MasterName string
	Username   string
	Password   string
	DB         int
}

type TokenConfig struct {
	Secret []byte
	Issuer string
	TTL    time.Duration
}

// Load reads .env (if present) and the process environment.
func Load() (Config, error) {
	_ = godotenv.Load()
	return fromEnv()
}

func fromEnv() (Config, error) {
	redisCfg, err := buildRedisConfig()
	if err != nil {
		return Config{}, err
	}
	coord, err := buildCoordinatorConfig()
	if err != nil {
		return Config{}, err
	}
	tokens, err := buildTokenConfig()
	if err != nil {
		return Config{}, err
	}
	trust, err := strconv.ParseBool(getEnv("TRUST_FORWARDED", "false"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid TRUST_FORWARDED: %w", err)
	}

	return Config{
		Server: ServerConfig{
			Port:           getEnv("SERVER_PORT", "8080"),
			TrustForwarded: trust,
			LogLevel:       getEnv("LOG_LEVEL", "info"),
		},
		Redis:       redisCfg,
		Coordinator: coord,
		Tokens:      tokens,
	}, nil
}

func buildRedisConfig() (RedisConfig, error) {
	mode := strings.ToLower(getEnv("SERVER_MODE", "single"))
	if _, ok := clientFactories[mode]; !ok && mode != ModeMemory {
		return RedisConfig{}, fmt.Errorf("unsupported SERVER_MODE: %s", mode)
	}

	db, err := strconv.Atoi(getEnv("REDIS_DB", "0"))
	if err != nil {
		return RedisConfig{}, fmt.Errorf("invalid REDIS_DB: %w", err)
	}

	cfg := RedisConfig{
		Mode:       mode,
		Addrs:      splitList(getEnv("REDIS_ADDRS", "localhost:6379")),
		MasterName: os.Getenv("REDIS_MASTER_NAME"),
		Username:   os.Getenv("REDIS_USERNAME"),
		Password:   os.Getenv("REDIS_PASSWORD"),
		DB:         db,
	}
	if mode == ModeSentinel && strings.TrimSpace(cfg.MasterName) == "" {
		return RedisConfig{}, fmt.Errorf("SERVER_MODE sentinel requires REDIS_MASTER_NAME")
	}
	return cfg, nil
}

func buildCoordinatorConfig() (goCoord.Config, error) {
	cfg := goCoord.DefaultConfig()

	var err error
	if cfg.RateLimit.ReplenishRate, err = getInt("RATE_LIMIT_REPLENISH_RATE", cfg.RateLimit.ReplenishRate); err != nil {
		return cfg, err
	}
	if cfg.RateLimit.BurstCapacity, err = getInt("RATE_LIMIT_BURST_CAPACITY", cfg.RateLimit.BurstCapacity); err != nil {
		return cfg, err
	}
	if cfg.Validation.UnrepeatableTTL, err = getDuration("VALIDATION_UNREPEATABLE_TTL", 24*time.Hour); err != nil {
		return cfg, err
	}
	if cfg.Validation.RepeatableWindow, err = getDuration("VALIDATION_REPEATABLE_WINDOW", cfg.Validation.RepeatableWindow); err != nil {
		return cfg, err
	}
	if cfg.Validation.RepeatableTimeout, err = getDuration("VALIDATION_REPEATABLE_TIMEOUT", cfg.Validation.RepeatableTimeout); err != nil {
		return cfg, err
	}
	if cfg.Validation.Retention, err = getDuration("VALIDATION_RETENTION", cfg.Validation.Retention); err != nil {
		return cfg, err
	}
	if cfg.Audit.Enabled, err = getBool("AUDIT_ENABLED", false); err != nil {
		return cfg, err
	}
	if cfg.Metrics.Enabled, err = getBool("METRICS_ENABLED", true); err != nil {
		return cfg, err
	}
	cfg.Metrics.EnableLatencyHistograms = cfg.Metrics.Enabled

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func buildTokenConfig() (TokenConfig, error) {
	ttl, err := getDuration("TOKEN_TTL", 5*time.Minute)
	if err != nil {
		return TokenConfig{}, err
	}
	return TokenConfig{
		Secret: []byte(os.Getenv("TOKEN_SECRET")),
		Issuer: getEnv("TOKEN_ISSUER", "gocoord"),
		TTL:    ttl,
	}, nil
}

func getEnv(key, fallback string) string {
	value := strings.TrimSpace(os.Getenv(key))
	if value == "" {
		return fallback
	}
	return value
}

func getInt(key string, fallback int) (int, error) {
	v, err := strconv.Atoi(getEnv(key, strconv.Itoa(fallback)))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getBool(key string, fallback bool) (bool, error) {
	v, err := strconv.ParseBool(getEnv(key, strconv.FormatBool(fallback)))
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v, err := time.ParseDuration(getEnv(key, fallback.String()))
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return v, nil
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}

