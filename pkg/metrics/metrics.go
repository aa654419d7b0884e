package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// APILatency measures HTTP request latencies.
	APILatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_api_latency_seconds",
			Help:    "API endpoint latency",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path", "status"},
	)

	// CacheOperations counts cache lookups and mutations by outcome.
	// Result is one of hit|miss|error for gets, ok|error for sets/deletes.
	CacheOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_cache_operations_total",
			Help: "Total number of cache operations",
		},
		[]string{"op", "result"},
	)

	// EventsPublished counts notification publish attempts (ok|error).
	EventsPublished = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_events_published_total",
			Help: "Total number of record events published",
		},
		[]string{"topic", "result"},
	)

	// WorkerRestarts counts worker processes replaced by the supervisor.
	WorkerRestarts = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "catalog_worker_restarts_total",
			Help: "Total number of worker processes restarted",
		},
	)
)
