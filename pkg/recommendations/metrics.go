package recommendations

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	fetchOutcomes = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shelfrec_recommendation_fetches_total",
		Help: "Recommendation fetches by outcome",
	}, []string{"outcome"})

	fetchDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "shelfrec_recommendation_fetch_duration_seconds",
		Help:    "Time spent waiting on the recommendation provider",
		Buckets: prometheus.DefBuckets,
	})

	breakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "shelfrec_recommender_breaker_state",
		Help: "Circuit breaker state (0 closed, 1 half-open, 2 open)",
	}, []string{"breaker"})
)
