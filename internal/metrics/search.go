package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Outcomes of a keyword search.
const (
	OutcomeOK      = "ok"
	OutcomeLimited = "limited"
	OutcomeFailed  = "failed"
	OutcomeError   = "error"
)

// Keyword search Prometheus metrics.
var (
	SearchRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kwsearch",
			Name:      "search_requests_total",
			Help:      "Total number of keyword searches",
		},
		[]string{"resource", "outcome"},
	)

	SearchErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "kwsearch",
			Name:      "search_errors_total",
			Help:      "Coded search errors reported to callers",
		},
		[]string{"resource", "code"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kwsearch",
			Name:      "search_duration_seconds",
			Help:      "Keyword search duration in seconds",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
		},
		[]string{"resource"},
	)

	SearchMatches = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "kwsearch",
			Name:      "search_total_count",
			Help:      "Number of matching rows before limiting and pagination",
			Buckets:   []float64{0, 1, 5, 10, 50, 100, 500, 1000, 10000},
		},
		[]string{"resource"},
	)
)

var registerSearchOnce sync.Once

// RegisterSearchMetrics registers the keyword search metrics. Safe to call
// more than once.
func RegisterSearchMetrics() {
	registerSearchOnce.Do(func() {
		prometheus.MustRegister(SearchRequestsTotal)
		prometheus.MustRegister(SearchErrorsTotal)
		prometheus.MustRegister(SearchDuration)
		prometheus.MustRegister(SearchMatches)
	})
}

// ObserveSearch records one finished search.
func ObserveSearch(resource, outcome string, codes []string, total int, d time.Duration) {
	SearchRequestsTotal.WithLabelValues(resource, outcome).Inc()
	SearchDuration.WithLabelValues(resource).Observe(d.Seconds())
	if outcome != OutcomeError {
		SearchMatches.WithLabelValues(resource).Observe(float64(total))
	}
	for _, c := range codes {
		SearchErrorsTotal.WithLabelValues(resource, c).Inc()
	}
}
