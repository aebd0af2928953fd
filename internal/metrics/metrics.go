package metrics

import "github.com/prometheus/client_golang/prometheus"

const namespace = "el"

var (
	LoginAttemptsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "login_attempts_total",
			Help:      "Total number of authentication attempts, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	TokenValidationsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "token_validations_total",
			Help:      "Total number of bearer token validations, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	StatisticsRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "statistics_requests_total",
			Help:      "Total number of statistics requests, labeled by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)

	RequestDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Latency of handled requests (seconds).",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
		},
		[]string{"operation"},
	)
)

func init() {
	prometheus.MustRegister(
		LoginAttemptsTotal,
		TokenValidationsTotal,
		StatisticsRequestsTotal,
		RequestDurationSeconds,
	)
}
