package main

import (
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goCoord "github.com/MrEthical07/goCoord"
	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"
)

func main() {
	var (
		concurrency = flag.Int("concurrency", 256, "number of concurrent workers")
		burst       = flag.Int("burst", 0, "bucket capacity for the admission phase; defaults to concurrency")
		replenish   = flag.Int("rate", 1, "tokens per second for the admission phase")
		ops         = flag.Int("ops", 100000, "operations for the throughput phase")
		keys        = flag.Int("keys", 1000, "distinct buckets in the throughput phase")
		qps         = flag.Float64("qps", 0, "pace the throughput phase; 0 means unlimited")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
	)
	flag.Parse()

	if *burst == 0 {
		*burst = *concurrency
	}
	if *concurrency <= 0 || *ops <= 0 || *keys <= 0 || *replenish <= 0 || *burst < *replenish {
		fmt.Fprintln(os.Stderr, "concurrency, ops, keys and rate must be > 0 and burst >= rate")
		os.Exit(2)
	}

	client, cleanup, err := connect(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	cfg := goCoord.DefaultConfig()
	cfg.RateLimit.ReplenishRate = *replenish
	cfg.RateLimit.BurstCapacity = *burst
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	coord, err := goCoord.New().
		WithConfig(cfg).
		WithRedis(client).
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build: %v\n", err)
		os.Exit(1)
	}
	defer coord.Close()

	ctx := context.Background()

	admitted, admission := runAdmissionPhase(ctx, coord, *concurrency)
	winners, unrepeatable := runUnrepeatablePhase(ctx, coord, *concurrency)
	throughput := runThroughputPhase(ctx, coord, *ops, *keys, *concurrency, *qps)

	fmt.Println("---- results ----")
	fmt.Printf("admission: %d of %d concurrent requests admitted (burst %d)\n", admitted, *concurrency, *burst)
	printStats("admission", admission)
	fmt.Printf("unrepeatable: %d of %d concurrent callers passed (want 1)\n", winners, *concurrency)
	printStats("unrepeatable", unrepeatable)
	printStats("throughput", throughput)

	snap := coord.MetricsSnapshot()
	fmt.Printf("metrics: allowed=%d denied=%d cache_failures=%d\n",
		snap.Counters[goCoord.MetricRateLimitAllowed],
		snap.Counters[goCoord.MetricRateLimitDenied],
		snap.Counters[goCoord.MetricCacheFailure],
	)

	if winners != 1 {
		os.Exit(1)
	}
}

func connect(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, fmt.Errorf("start miniredis: %w", err)
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// runAdmissionPhase fires one request per worker at a single fresh bucket.
func runAdmissionPhase(ctx context.Context, coord *goCoord.Coordinator, workers int) (int64, phaseStats) {
	key := "loadtest:" + uuid.NewString()
	var admitted atomic.Int64

	stats := fanOut(workers, workers, func(int) error {
		if coord.Limiter().IsAllowed(ctx, key) {
			admitted.Add(1)
		}
		return nil
	})
	return admitted.Load(), stats
}

// runUnrepeatablePhase races every worker on one idempotency key.
func runUnrepeatablePhase(ctx context.Context, coord *goCoord.Coordinator, workers int) (int64, phaseStats) {
	key := "loadtest:" + uuid.NewString()
	var winners atomic.Int64

	stats := fanOut(workers, workers, func(worker int) error {
		ok, err := coord.Validator().UnRepeatableValidate(ctx, key, fmt.Sprintf("worker-%d", worker))
		if ok {
			winners.Add(1)
		}
		return err
	})
	return winners.Load(), stats
}

func runThroughputPhase(ctx context.Context, coord *goCoord.Coordinator, ops, keys, workers int, qps float64) phaseStats {
	bucketKeys := make([]string, keys)
	for i := range bucketKeys {
		bucketKeys[i] = "loadtest:" + uuid.NewString()
	}

	pacer := rate.NewLimiter(rate.Inf, 0)
	if qps > 0 {
		pacer = rate.NewLimiter(rate.Limit(qps), workers)
	}

	return fanOut(ops, workers, func(i int) error {
		if err := pacer.Wait(ctx); err != nil {
			return err
		}
		_, err := coord.Limiter().Allow(ctx, bucketKeys[i%len(bucketKeys)])
		return err
	})
}

// fanOut runs op for indexes [0, ops) on workers goroutines and records the
// latency of every call.
func fanOut(ops, workers int, op func(i int) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    atomic.Int64
		failures  atomic.Int64
		mu        sync.Mutex
		latencies = make([]time.Duration, 0, ops)
	)

	start := time.Now()
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			local := make([]time.Duration, 0, ops/workers+1)
			for {
				i := int(cursor.Add(1)) - 1
				if i >= ops {
					break
				}
				t0 := time.Now()
				if err := op(i); err != nil {
					failures.Add(1)
				}
				local = append(local, time.Since(t0))
			}
			mu.Lock()
			latencies = append(latencies, local...)
			mu.Unlock()
		}()
	}
	wg.Wait()

	return computeStats(time.Since(start), latencies, failures.Load())
}
