// Package metrics provides the Prometheus collectors shared by the portal and the CMS.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// HTTP metrics
var (
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"app", "method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"app", "method", "route"},
	)
)

// Backend and cache metrics
var (
	// BackendRequestDuration measures calls to the news backend API.
	BackendRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "backend_request_duration_seconds",
			Help:    "Backend API request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint", "status"},
	)

	// QueryCacheTotal counts query cache lookups by result (hit, miss, shared).
	QueryCacheTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_lookups_total",
			Help: "Query cache lookups by result",
		},
		[]string{"result"},
	)

	// QueryInvalidationsTotal counts prefix invalidations by resource.
	QueryInvalidationsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "query_cache_invalidations_total",
			Help: "Query cache prefix invalidations",
		},
		[]string{"prefix"},
	)

	// FeedPagesTotal counts infinite-list page fetches by outcome.
	FeedPagesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "feed_page_fetches_total",
			Help: "Infinite list page fetches by outcome",
		},
		[]string{"outcome"},
	)

	// FeedListsActive tracks the infinite lists held by the registry.
	FeedListsActive = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "feed_lists_active",
			Help: "Infinite lists currently held in memory",
		},
	)
)
