package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// VotesTotal counts applied votes by target kind and direction.
	VotesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_votes_total",
		Help: "Total number of votes processed",
	}, []string{"target", "direction"})

	// HTTPRequestDuration records request latency by route and status.
	HTTPRequestDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "forum_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "route", "status"})

	// CacheResults counts cache lookups by outcome (hit, miss, error).
	CacheResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "forum_cache_results_total",
		Help: "Cache lookups by outcome",
	}, []string{"outcome"})
)
