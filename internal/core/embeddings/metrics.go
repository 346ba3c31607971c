package embeddings

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	encodeRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "quotelens_embedding_requests_total",
		Help: "Embedding requests by provider and outcome",
	}, []string{"provider", "outcome"})

	encodeLatency = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "quotelens_embedding_latency_seconds",
		Help:    "Embedding request latency by provider",
		Buckets: prometheus.DefBuckets,
	}, []string{"provider"})
)

func observeEncode(provider string, d time.Duration, ok bool) {
	outcome := "error"
	if ok {
		outcome = "success"
	}

	encodeRequests.WithLabelValues(provider, outcome).Inc()
	encodeLatency.WithLabelValues(provider).Observe(d.Seconds())
}
