package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	searchesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "mapsearch",
			Name:      "searches_total",
			Help:      "Search cycles by outcome",
		},
		[]string{"outcome"},
	)

	searchDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "mapsearch",
			Name:      "search_duration_seconds",
			Help:      "Duration of the two-query fetch cycle",
			Buckets:   []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		},
	)

	searchesInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "mapsearch",
			Name:      "searches_in_flight",
			Help:      "Outstanding search cycles",
		},
	)
)

func init() {
	prometheus.MustRegister(searchesTotal)
	prometheus.MustRegister(searchDuration)
	prometheus.MustRegister(searchesInFlight)
}

// Search outcome labels.
const (
	OutcomeCommitted = "committed"
	OutcomeStale     = "stale"
	OutcomeSuspended = "suspended"
	OutcomeNoRegion  = "no_region"
	OutcomeError     = "error"
)

// SearchStarted marks a search cycle as in flight.
func SearchStarted() {
	searchesInFlight.Inc()
}

// SearchFinished records the outcome and duration of a search cycle.
func SearchFinished(outcome string, seconds float64) {
	searchesInFlight.Dec()
	searchesTotal.WithLabelValues(outcome).Inc()
	searchDuration.Observe(seconds)
}

// SearchSkipped records a search that never became a fetch cycle.
func SearchSkipped(outcome string) {
	searchesTotal.WithLabelValues(outcome).Inc()
}
