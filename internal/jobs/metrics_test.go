package jobmetrics

import (
	"errors"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

func TestTrackerRecordsRunsAndFailures(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := NewMetrics(registry)

	if err := metrics.Track("reports:warmup").End(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	wantErr := errors.New("boom")
	if err := metrics.Track("reports:warmup").End(wantErr); err != wantErr {
		t.Fatalf("expected error passthrough, got %v", err)
	}

	families, err := registry.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, family := range families {
		found[family.GetName()] = true
	}
	for _, name := range []string{"kasbook_jobs_total", "kasbook_jobs_failures_total", "kasbook_job_duration_seconds"} {
		if !found[name] {
			t.Fatalf("expected metric family %s, got %v", name, found)
		}
	}
}

func TestTrackerNilMetrics(t *testing.T) {
	var metrics *Metrics
	if err := metrics.Track("anything").End(nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
