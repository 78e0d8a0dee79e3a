package internaldefs

import (
	"strings"
	"testing"
)

func TestCumulative(t *testing.T) {
	got := Cumulative([]uint64{1, 2, 3})
	want := [BucketCount]uint64{1, 3, 6, 6, 6, 6, 6, 6}
	if got != want {
		t.Fatalf("expected %v, got %v", want, got)
	}
	if Cumulative(nil) != ([BucketCount]uint64{}) {
		t.Fatal("nil input must yield zero buckets")
	}
}

func TestDefinitionsUnique(t *testing.T) {
	names := make(map[string]bool)
	for _, def := range CounterDefs {
		if !strings.HasPrefix(def.Name, "gocoord_") || !strings.HasSuffix(def.Name, "_total") {
			t.Fatalf("counter %q must be gocoord_*_total", def.Name)
		}
		if names[def.Name] {
			t.Fatalf("duplicate metric name %q", def.Name)
		}
		names[def.Name] = true
	}
	for _, def := range HistogramDefs {
		if names[def.Name] {
			t.Fatalf("duplicate metric name %q", def.Name)
		}
		names[def.Name] = true
	}
}
