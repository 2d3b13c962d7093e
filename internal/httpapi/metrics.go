package httpapi

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "sinanetl",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "HTTP requests by path and status code.",
	}, []string{"path", "code"})

	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "sinanetl",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "HTTP request latency by path.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"path"})
)
