package main

import (
	"context"
	"crypto/rand"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	goCoord "github.com/MrEthical07/goCoord"
	"github.com/MrEthical07/goCoord/internal/config"
	"github.com/MrEthical07/goCoord/tokenguard"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}

	logger := newLogger(cfg.Server.LogLevel)

	client, closeFn, err := initRedis(cfg.Redis, logger)
	if err != nil {
		logger.Error("failed to init redis", "mode", cfg.Redis.Mode, "error", err)
		os.Exit(1)
	}
	defer closeFn()

	builder := goCoord.New().
		WithConfig(cfg.Coordinator).
		WithRedis(client).
		WithLogger(logger)
	if cfg.Coordinator.Audit.Enabled {
		builder = builder.WithAuditSink(goCoord.NewJSONWriterSink(os.Stdout))
	}
	coord, err := builder.Build()
	if err != nil {
		logger.Error("failed to build coordinator", "error", err)
		os.Exit(1)
	}
	defer coord.Close()

	secret, err := tokenSecret(cfg.Tokens.Secret, logger)
	if err != nil {
		logger.Error("failed to prepare token secret", "error", err)
		os.Exit(1)
	}
	guard, err := tokenguard.New(coord.Validator(), tokenguard.Config{
		Secret: secret,
		Issuer: cfg.Tokens.Issuer,
	})
	if err != nil {
		logger.Error("failed to create token guard", "error", err)
		os.Exit(1)
	}

	srv := &http.Server{
		Addr: fmt.Sprintf(":%s", cfg.Server.Port),
		Handler: newRouter(app{
			coord:          coord,
			guard:          guard,
			tokenTTL:       cfg.Tokens.TTL,
			trustForwarded: cfg.Server.TrustForwarded,
			metrics:        cfg.Coordinator.Metrics.Enabled,
			logger:         logger,
		}),
		ReadHeaderTimeout: 5 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", srv.Addr, "redis_mode", cfg.Redis.Mode)
		if err := srv.ListenAndServe(); err != nil {
			errCh <- err
		}
	}()

	select {
	case <-ctx.Done():
		logger.Info("shutdown signal received")
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			logger.Error("server error", "error", err)
			os.Exit(1)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Warn("graceful shutdown failed", "error", err)
	}
}

func newLogger(level string) *slog.Logger {
	var l slog.Level
	switch strings.ToLower(level) {
	case "debug":
		l = slog.LevelDebug
	case "warn":
		l = slog.LevelWarn
	case "error":
		l = slog.LevelError
	default:
		l = slog.LevelInfo
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: l}))
}

func initRedis(cfg config.RedisConfig, logger *slog.Logger) (redis.UniversalClient, func(), error) {
	if cfg.Mode == config.ModeMemory {
		mr, err := miniredis.Run()
		if err != nil {
			return nil, nil, err
		}
		logger.Warn("using in-process redis; state is lost on exit", "addr", mr.Addr())
		client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
		return client, func() {
			_ = client.Close()
			mr.Close()
		}, nil
	}

	client, err := config.NewClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	return client, func() {
		if err := client.Close(); err != nil {
			logger.Warn("failed to close redis client", "error", err)
		}
	}, nil
}

// tokenSecret returns the configured secret, or a random one when none is set.
// A configured secret that is too short is rejected later by tokenguard.New.
func tokenSecret(configured []byte, logger *slog.Logger) ([]byte, error) {
	if len(configured) > 0 {
		return configured, nil
	}
	secret := make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	logger.Warn("TOKEN_SECRET not set; issued tokens will not survive a restart")
	return secret, nil
}
