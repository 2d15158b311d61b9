// Package metrics exposes Prometheus collectors for the dashboard.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// UpstreamRequests counts calls against the exchange API by
	// endpoint and outcome ("ok", "http_error", "parse_error",
	// "network_error").
	UpstreamRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_upstream_requests_total",
		Help: "Exchange API requests by endpoint and outcome.",
	}, []string{"endpoint", "outcome"})

	// UpstreamDuration observes exchange API request latency.
	UpstreamDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "dashboard_upstream_request_seconds",
		Help:    "Exchange API request duration in seconds.",
		Buckets: prometheus.DefBuckets,
	}, []string{"endpoint"})

	// CacheRequests counts memoization lookups by request kind and
	// result ("hit" or "miss").
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "dashboard_cache_requests_total",
		Help: "Memoization cache lookups by kind and result.",
	}, []string{"kind", "result"})
)
