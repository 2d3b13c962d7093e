package query

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	queryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sinanetl",
		Subsystem: "query",
		Name:      "duration_seconds",
		Help:      "Wall time of store fetches, by adapter mode.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"mode"})

	cacheHits = promauto.NewCounter(prometheus.CounterOpts{
		Namespace: "sinanetl",
		Subsystem: "query",
		Name:      "cache_hits_total",
		Help:      "Filtered-case lookups served from the LRU cache.",
	})

	queryResults = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinanetl",
		Subsystem: "query",
		Name:      "results_total",
		Help:      "Fetch outcomes by result status.",
	}, []string{"status"})
)
