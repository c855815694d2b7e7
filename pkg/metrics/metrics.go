// Package metrics holds the Prometheus collectors shared by the services.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "skrm"

// Allocation results.
const (
	ResultOK        = "ok"
	ResultExhausted = "exhausted"
	ResultError     = "error"
)

var (
	// httpRequests counts completed requests.
	// Labels: service, method, route, status
	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled",
		},
		[]string{"service", "method", "route", "status"},
	)

	// httpLatency records request latency in seconds.
	httpLatency = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests in seconds",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"service", "method", "route"},
	)

	// allocations counts sequence number allocations.
	// Labels: kind (task, feature), result (ok, exhausted, error)
	allocations = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "sequence",
			Name:      "allocations_total",
			Help:      "Total number of sequence number allocations by kind and result",
		},
		[]string{"kind", "result"},
	)
)

// Register registers all collectors with registry. Call it once per
// process.
func Register(registry prometheus.Registerer) {
	registry.MustRegister(
		httpRequests,
		httpLatency,
		allocations,
	)
}

// Handler serves the default registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.Handler()
}

// ObserveAllocation records one allocation attempt.
func ObserveAllocation(kind, result string) {
	allocations.WithLabelValues(kind, result).Inc()
}
