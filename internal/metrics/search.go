package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

// Proximity cache and search Prometheus metrics.
var (
	ProximityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qeats",
			Name:      "proximity_cache_total",
			Help:      "Proximity cache lookups by result",
		},
		[]string{"result"}, // "hit" / "miss" / "bypass" / "corrupt"
	)

	SearchPredicateDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "qeats",
			Name:      "search_predicate_duration_seconds",
			Help:      "Duration of a single search predicate lookup in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"predicate"},
	)

	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "qeats",
			Name:      "search_requests_total",
			Help:      "Restaurant lookups by mode",
		},
		[]string{"mode"}, // "nearby" / "sequential" / "concurrent"
	)
)

var registerOnce sync.Once

// Register registers the HTTP, proximity cache and search metrics with the default
// registry. Must be called from main; repeated calls are no-ops.
func Register() {
	registerOnce.Do(func() {
		prometheus.MustRegister(
			httpRequestDuration,
			httpRequestsTotal,
			httpRequestsInFlight,
			ProximityCacheTotal,
			SearchPredicateDuration,
			SearchRequestsTotal,
		)
	})
}
