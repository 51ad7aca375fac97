// Prometheus instrumentation for outbound API calls.
//
// Labels are kept low-cardinality on purpose:
//   - operation: the logical client operation (create_idea, list_ideas, ...)
//   - outcome:   "ok", "request_failed", "decode_failed", or "cancelled"
//
// A call is counted once, under its final verdict: the transport layer counts
// its own failures, and calls that return a 2xx are counted only after the
// payload decode settles, so a mangled body shows up as decode_failed rather
// than ok. Duration omits outcome to keep histogram cardinality bounded.
// Collectors are registered on the default registry so an embedding
// application's /metrics endpoint picks them up without extra wiring.
package client

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Fixed outcome label values.
const (
	outcomeOK            = "ok"
	outcomeRequestFailed = "request_failed"
	outcomeDecodeFailed  = "decode_failed"
	outcomeCancelled     = "cancelled"
)

var (
	// apiReqs counts outbound API calls by operation and outcome.
	apiReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feedback_sdk_requests_total",
			Help: "Total number of outbound ideas API calls.",
		},
		[]string{"operation", "outcome"},
	)

	// apiLat records call duration in seconds by operation.
	apiLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "feedback_sdk_request_duration_seconds",
			Help:    "Duration of outbound ideas API calls in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	// apiInflight gauges concurrently running API calls.
	apiInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "feedback_sdk_requests_inflight",
			Help: "Current number of in-flight ideas API calls.",
		},
	)
)

func init() {
	prometheus.MustRegister(apiReqs, apiLat, apiInflight)
}

// observe records a call that terminated in the transport layer: counter and
// latency in one shot.
func observe(operation, outcome string, start time.Time) {
	apiReqs.WithLabelValues(operation, outcome).Inc()
	apiLat.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// observeLatency records the duration of a call whose counter verdict is
// settled later, after the payload decode.
func observeLatency(operation string, start time.Time) {
	apiLat.WithLabelValues(operation).Observe(time.Since(start).Seconds())
}

// countOutcome finalizes the request counter once the payload verdict is
// known.
func countOutcome(operation, outcome string) {
	apiReqs.WithLabelValues(operation, outcome).Inc()
}
