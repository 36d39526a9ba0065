// Package observability provides Prometheus metrics and OpenTelemetry tracing.
package observability

import (
	"sync"
	"time"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// RedisErrors counts Redis errors by operation type.
	RedisErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaimit_redis_errors_total",
		Help: "Total number of Redis errors by operation type",
	}, []string{"operation"})

	// DatabaseQueryLatency records database query latency by operation and table.
	DatabaseQueryLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "reclaimit_database_query_latency_seconds",
		Help:    "Database query latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"operation", "table"})

	// ClaimTransitions counts claim lifecycle transitions by outcome
	// (submitted, approved, declined, deleted).
	ClaimTransitions = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaimit_claim_transitions_total",
		Help: "Total number of claim lifecycle transitions by outcome",
	}, []string{"outcome"})

	// NotificationOutcomes counts claim notification delivery attempts by result.
	NotificationOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaimit_notifications_total",
		Help: "Total number of claim notification deliveries by result",
	}, []string{"result"})

	// ItemsReported counts item postings by kind.
	ItemsReported = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "reclaimit_items_reported_total",
		Help: "Total number of reported items by kind",
	}, []string{"kind"})
)

var (
	promOnce       sync.Once
	promMiddleware *fiberprometheus.FiberPrometheus
)

// InitMetrics returns the shared fiberprometheus middleware. The HTTP
// collectors register on the default registry exactly once, so repeated
// server construction (tests) is safe.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	promOnce.Do(func() {
		promMiddleware = fiberprometheus.New(serviceName)
	})
	return promMiddleware
}

// ObserveQuery records the latency of a database query, typically via defer:
//
//	defer ObserveQuery("select", "claims", time.Now())
func ObserveQuery(operation, table string, start time.Time) {
	DatabaseQueryLatency.WithLabelValues(operation, table).Observe(time.Since(start).Seconds())
}
