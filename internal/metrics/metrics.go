package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// AnalysesTotal counts analysis runs by outcome.
	AnalysesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "similarity_analyses_total",
			Help: "Total number of similarity analysis runs",
		},
		[]string{"status"},
	)

	// AnalysisDuration measures end-to-end analysis duration.
	AnalysisDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "similarity_analysis_duration_seconds",
			Help:    "Similarity analysis duration in seconds",
			Buckets: prometheus.ExponentialBuckets(0.01, 2, 14),
		},
	)

	// PairsCompared counts compared file pairs.
	PairsCompared = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_pairs_compared_total",
			Help: "Total number of file pairs compared",
		},
	)

	// SuspiciousPairs counts pairs at or above the configured threshold.
	SuspiciousPairs = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "similarity_suspicious_pairs_total",
			Help: "Total number of pairs flagged at or above threshold",
		},
	)
)

// InitPrometheus registers all service metrics.
func InitPrometheus() {
	prometheus.MustRegister(AnalysesTotal)
	prometheus.MustRegister(AnalysisDuration)
	prometheus.MustRegister(PairsCompared)
	prometheus.MustRegister(SuspiciousPairs)
}
