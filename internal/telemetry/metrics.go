package telemetry

import (
	"log/slog"
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Run counters, exposed when the metrics server is enabled. Labelled by
// benchmark group so dashboards can slice regressions per area.
var (
	BenchmarksCompleted = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplebench_benchmarks_completed_total",
			Help: "Total number of benchmark measurements completed",
		},
		[]string{"group"},
	)
	BenchmarksFailed = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplebench_benchmarks_failed_total",
			Help: "Total number of benchmark workers that failed",
		},
		[]string{"group"},
	)
	RegressionsDetected = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "simplebench_regressions_detected_total",
			Help: "Total number of regression verdicts",
		},
		[]string{"group"},
	)
)

// StartMetricsServer starts a HTTP server exposing Prometheus metrics.
func StartMetricsServer(addr string) error {
	mux := http.NewServeMux()
	mux.Handle("/metrics", promhttp.Handler())

	slog.Info("starting metrics server", "addr", addr)
	return http.ListenAndServe(addr, mux)
}
