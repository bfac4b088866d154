package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecorderCounts(t *testing.T) {
	reg := prometheus.NewRegistry()
	r := New(reg)

	r.RecordInference("generate_signals", "ok")
	r.RecordInference("generate_signals", "ok")
	r.RecordInference("analyze_image", "error")
	r.RecordLatency("generate_signals", 1.5)
	r.SetActiveSessions(3)

	if got := testutil.ToFloat64(r.inferenceTotal.WithLabelValues("generate_signals", "ok")); got != 2 {
		t.Fatalf("expected 2, got %v", got)
	}
	if got := testutil.ToFloat64(r.activeSessions); got != 3 {
		t.Fatalf("expected 3 sessions, got %v", got)
	}
	if n := testutil.CollectAndCount(r.latency); n != 1 {
		t.Fatalf("expected 1 latency series, got %d", n)
	}
}

func TestNewOnSeparateRegistries(t *testing.T) {
	New(prometheus.NewRegistry())
	New(prometheus.NewRegistry())
}
