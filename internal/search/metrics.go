package search

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	searchRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotelens_search_requests_total",
		Help: "Search provider requests by provider and outcome.",
	}, []string{"provider", "outcome"})

	searchLatencySeconds = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quotelens_search_latency_seconds",
		Help:    "Search provider request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)

func observeSearch(provider string, d time.Duration, ok bool) {
	outcome := "success"
	if !ok {
		outcome = "error"
	}

	searchRequestsTotal.WithLabelValues(provider, outcome).Inc()
	searchLatencySeconds.WithLabelValues(provider).Observe(d.Seconds())
}
