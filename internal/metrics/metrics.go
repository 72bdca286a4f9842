// Package metrics exposes Prometheus collectors for the screening pipeline.
// Collectors are registered once on the default registry.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	screeningRuns = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "screening_runs_total",
		Help: "Screening runs by origin side and outcome",
	}, []string{"origin", "outcome"}) // outcome: "exact", "fuzzy", "none"; committed runs only

	screeningDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "screening_run_duration_seconds",
		Help:    "Duration of committed screening runs, measured inside the transaction",
		Buckets: []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
	}, []string{"origin"})

	matchesRecorded = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "match_records_total",
		Help: "Match ledger rows committed, by origin side and kind",
	}, []string{"origin", "kind"})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "http_requests_total",
		Help: "HTTP requests by route and status code",
	}, []string{"method", "route", "status"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "http_request_duration_seconds",
		Help:    "HTTP request latency by route",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// ObserveScreening records one committed screening run.
func ObserveScreening(origin, outcome string, d time.Duration) {
	screeningRuns.WithLabelValues(origin, outcome).Inc()
	screeningDuration.WithLabelValues(origin).Observe(d.Seconds())
}

// AddMatches counts ledger rows once their transaction has committed.
func AddMatches(origin, kind string, n int) {
	if n > 0 {
		matchesRecorded.WithLabelValues(origin, kind).Add(float64(n))
	}
}

// ObserveRequest records one HTTP request.
func ObserveRequest(method, route, status string, d time.Duration) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(d.Seconds())
}
