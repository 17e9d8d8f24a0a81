package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// InteractionsTotal counts gate outcomes per incoming interaction.
	InteractionsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "librarian_interactions_total",
			Help: "Total number of interactions by gate outcome",
		},
		[]string{"outcome"},
	)

	// HandlerErrorsTotal counts leaf-handler failures.
	HandlerErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "librarian_handler_errors_total",
			Help: "Total number of leaf handler errors",
		},
		[]string{"handler"},
	)

	// LibraryRequestDuration tracks library API call latency.
	LibraryRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "librarian_library_request_seconds",
			Help:    "Duration of library API requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint", "status"},
	)
)
