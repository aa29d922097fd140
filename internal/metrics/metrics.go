package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const (
	namespace = "fleetconsole"
)

var (
	// Fleet API Metrics
	APIRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "api_requests_total",
		Help:      "Count of Fleet API calls by operation and response status.",
	}, []string{"operation", "status"})

	APIRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "api_request_duration_seconds",
		Help:      "Time taken for a Fleet API call to complete.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"operation"})

	// Query Cache Metrics
	QueryCacheLookupsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "query_cache_lookups_total",
		Help:      "Query cache lookups by resource kind and result (hit, miss, shared).",
	}, []string{"kind", "result"})

	QueryCacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "query_cache_entries",
		Help:      "Number of entries currently held by the query cache.",
	})

	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Console HTTP requests by route and status.",
	}, []string{"route", "status"})

	// Background Metrics
	ConfigRefreshesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "config_refreshes_total",
		Help:      "Background app config refresh passes by result (success, error, busy).",
	}, []string{"result"})
)
