package main

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	goCoord "github.com/MrEthical07/goCoord"
)

func TestPercentile(t *testing.T) {
	samples := make([]time.Duration, 100)
	for i := range samples {
		samples[i] = time.Duration(i+1) * time.Millisecond
	}

	if got := percentile(samples, 50); got != 50*time.Millisecond {
		t.Fatalf("p50: got %v", got)
	}
	if got := percentile(samples, 99); got != 99*time.Millisecond {
		t.Fatalf("p99: got %v", got)
	}
	if got := percentile(samples, 100); got != 100*time.Millisecond {
		t.Fatalf("p100: got %v", got)
	}
	if got := percentile(nil, 50); got != 0 {
		t.Fatalf("empty: got %v", got)
	}
}

func TestComputeStatsEmpty(t *testing.T) {
	s := computeStats(time.Second, nil, 3)
	if s.ops != 0 || s.failures != 3 {
		t.Fatalf("unexpected stats %+v", s)
	}
}

func TestPhasesAgainstMiniredis(t *testing.T) {
	client, cleanup, err := connect("")
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer cleanup()

	cfg := goCoord.DefaultConfig()
	cfg.RateLimit.ReplenishRate = 1
	cfg.RateLimit.BurstCapacity = 16
	coord, err := goCoord.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		WithClock(func() time.Time { return time.Unix(1_700_000_000, 0) }).
		Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	defer coord.Close()

	ctx := context.Background()
	admitted, stats := runAdmissionPhase(ctx, coord, 32)
	if admitted != 16 {
		t.Fatalf("expected burst of 16 to be admitted, got %d", admitted)
	}
	if stats.ops != 32 || stats.failures != 0 {
		t.Fatalf("unexpected admission stats %+v", stats)
	}

	winners, _ := runUnrepeatablePhase(ctx, coord, 32)
	if winners != 1 {
		t.Fatalf("expected one winner, got %d", winners)
	}

	tp := runThroughputPhase(ctx, coord, 200, 10, 8, 0)
	if tp.ops != 200 || tp.failures != 0 {
		t.Fatalf("unexpected throughput stats %+v", tp)
	}
}
