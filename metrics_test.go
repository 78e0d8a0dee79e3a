package goCoord

import (
	"sync"
	"testing"
	"time"
)

func TestMetricsDisabledNoIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: false})
	m.Inc(MetricRateLimitAllowed)

	if got := m.Value(MetricRateLimitAllowed); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
	if snap := m.Snapshot(); len(snap.Counters) != 0 {
		t.Fatalf("disabled snapshot must be empty, got %d counters", len(snap.Counters))
	}
}

func TestMetricsNilSafe(t *testing.T) {
	var m *Metrics
	m.Inc(MetricCacheFailure)
	m.Observe(MetricScriptLatency, time.Millisecond)
	if m.Enabled() || m.LatencyEnabled() || m.Value(MetricCacheFailure) != 0 {
		t.Fatal("nil metrics must be inert")
	}
}

func TestMetricsEnabledIncrement(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Inc(MetricUnrepeatablePassed)
	m.Inc(MetricUnrepeatablePassed)
	m.Inc(MetricUnrepeatablePassed)
	m.Inc(metricIDCount)

	if got := m.Value(MetricUnrepeatablePassed); got != 3 {
		t.Fatalf("expected 3, got %d", got)
	}
}

func TestMetricsConcurrentIncrementSafe(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})

	const goroutines = 32
	const perG = 4000

	var wg sync.WaitGroup
	wg.Add(goroutines)
	for i := 0; i < goroutines; i++ {
		go func() {
			defer wg.Done()
			for j := 0; j < perG; j++ {
				m.Inc(MetricRateLimitDenied)
			}
		}()
	}
	wg.Wait()

	want := uint64(goroutines * perG)
	if got := m.Value(MetricRateLimitDenied); got != want {
		t.Fatalf("expected %d, got %d", want, got)
	}
}

func TestMetricsHistogramBucketCorrectness(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})

	observations := []time.Duration{
		5 * time.Millisecond,
		10 * time.Millisecond,
		25 * time.Millisecond,
		50 * time.Millisecond,
		100 * time.Millisecond,
		250 * time.Millisecond,
		500 * time.Millisecond,
		700 * time.Millisecond,
	}

	for _, d := range observations {
		m.Observe(MetricScriptLatency, d)
	}
	// Counters never carry a histogram.
	m.Observe(MetricRateLimitAllowed, time.Millisecond)

	snap := m.Snapshot()
	buckets := snap.Histograms[MetricScriptLatency]
	if len(buckets) != 8 {
		t.Fatalf("expected 8 buckets, got %d", len(buckets))
	}
	for i, v := range buckets {
		if v != 1 {
			t.Fatalf("bucket %d expected 1, got %d", i, v)
		}
	}
	if _, ok := snap.Histograms[MetricRateLimitAllowed]; ok {
		t.Fatal("unexpected histogram for a counter id")
	}
}

func TestMetricsLatencyRequiresHistogramFlag(t *testing.T) {
	m := NewMetrics(MetricsConfig{Enabled: true})
	m.Observe(MetricScriptLatency, time.Millisecond)

	if _, ok := m.Snapshot().Histograms[MetricScriptLatency]; ok {
		t.Fatal("histogram must be absent when latency histograms are disabled")
	}
}

func TestMetricsSnapshotConsistency(t *testing.T) {
	m := NewMetrics(MetricsConfig{
		Enabled:                 true,
		EnableLatencyHistograms: true,
	})
	m.Inc(MetricRateLimitAllowed)
	m.Inc(MetricRateLimitDenied)
	m.Inc(MetricRateLimitDenied)
	m.Observe(MetricScriptLatency, 2*time.Millisecond)

	snap := m.Snapshot()

	if snap.Counters[MetricRateLimitAllowed] != 1 {
		t.Fatalf("expected MetricRateLimitAllowed=1 got %d", snap.Counters[MetricRateLimitAllowed])
	}
	if snap.Counters[MetricRateLimitDenied] != 2 {
		t.Fatalf("expected MetricRateLimitDenied=2 got %d", snap.Counters[MetricRateLimitDenied])
	}
	if _, ok := snap.Counters[MetricScriptLatency]; ok {
		t.Fatal("histogram id must not appear among counters")
	}
	if snap.Histograms[MetricScriptLatency][0] != 1 {
		t.Fatalf("expected first histogram bucket=1 got %d", snap.Histograms[MetricScriptLatency][0])
	}
}
