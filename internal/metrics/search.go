package metrics

import "github.com/prometheus/client_golang/prometheus"

// Search Prometheus metrics.
var (
	StrategyDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recall",
			Name:      "search_strategy_duration_seconds",
			Help:      "Per-strategy retrieval duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		},
		[]string{"strategy"},
	)

	StrategyResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "recall",
			Name:      "search_strategy_results",
			Help:      "Result count returned per strategy",
			Buckets:   []float64{0, 1, 5, 10, 25, 50, 100},
		},
		[]string{"strategy"},
	)

	StrategyFailuresTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "search_strategy_failures_total",
			Help:      "Retrieval strategy failures recovered with empty results",
		},
		[]string{"strategy"},
	)

	FusionHybridTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "search_fusion_hybrid_total",
			Help:      "Records promoted to hybrid match type during fusion",
		},
	)

	EnhancerCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "search_enhancer_cache_total",
			Help:      "Query enhancement cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	EnhancerFallbacksTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "recall",
			Name:      "search_enhancer_fallbacks_total",
			Help:      "Enhancements that fell back to the built-in synonym path",
		},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers Prometheus search metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(StrategyDuration)
	prometheus.MustRegister(StrategyResults)
	prometheus.MustRegister(StrategyFailuresTotal)
	prometheus.MustRegister(FusionHybridTotal)
	prometheus.MustRegister(EnhancerCacheTotal)
	prometheus.MustRegister(EnhancerFallbacksTotal)
	searchMetricsRegistered = true
}
