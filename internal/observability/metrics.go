package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	llmRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "suite_llm_requests_total",
		Help: "Adapter calls to the generative model by operation and outcome",
	}, []string{"operation", "outcome"})

	llmDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "suite_llm_request_duration_seconds",
		Help:    "Latency of adapter calls to the generative model",
		Buckets: []float64{0.25, 0.5, 1, 2, 5, 10, 20, 40},
	}, []string{"operation"})

	sessionsOpen = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "suite_sessions_open",
		Help: "Sessions currently mounted, by view",
	}, []string{"view"})

	previewBytes = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "suite_preview_bytes",
		Help: "Bytes of image previews currently held in memory",
	})
)

// ObserveLLMCall records one adapter call. outcome is "ok" or a failure kind.
func ObserveLLMCall(operation, outcome string, elapsed time.Duration) {
	llmRequests.WithLabelValues(operation, outcome).Inc()
	llmDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// SetSessionsOpen publishes the number of mounted sessions of a view.
func SetSessionsOpen(view string, n int) {
	sessionsOpen.WithLabelValues(view).Set(float64(n))
}

// AddPreviewBytes adjusts the held preview bytes gauge; delta may be negative.
func AddPreviewBytes(delta int) {
	previewBytes.Add(float64(delta))
}
