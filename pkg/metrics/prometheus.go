package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Recorder exposes inference and session metrics to Prometheus.
type Recorder struct {
	inferenceTotal *prometheus.CounterVec
	latency        *prometheus.HistogramVec
	activeSessions prometheus.Gauge
}

// New registers the collectors on reg.
func New(reg prometheus.Registerer) *Recorder {
	factory := promauto.With(reg)
	return &Recorder{
		inferenceTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "signal_desk_inference_requests_total",
				Help: "Inference requests by operation and outcome",
			},
			[]string{"operation", "outcome"},
		),
		latency: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "signal_desk_inference_duration_seconds",
				Help:    "Duration of remote inference calls in seconds",
				Buckets: []float64{0.5, 1, 2.5, 5, 10, 20, 40, 80},
			},
			[]string{"operation"},
		),
		activeSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "signal_desk_active_sessions",
				Help: "Sessions currently held in memory",
			},
		),
	}
}

// RecordInference counts one finished inference request.
func (r *Recorder) RecordInference(op, outcome string) {
	r.inferenceTotal.WithLabelValues(op, outcome).Inc()
}

// RecordLatency records remote call latency in seconds.
func (r *Recorder) RecordLatency(op string, seconds float64) {
	r.latency.WithLabelValues(op).Observe(seconds)
}

// SetActiveSessions records the live session count.
func (r *Recorder) SetActiveSessions(n int) {
	r.activeSessions.Set(float64(n))
}
