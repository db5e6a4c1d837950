package metrics

import "github.com/prometheus/client_golang/prometheus"

// Grading Prometheus metrics.
var (
	GradesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "essaysim",
			Name:      "grades_total",
			Help:      "Graded responses by language and band",
		},
		[]string{"language", "band"},
	)

	ScoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "essaysim",
			Name:      "score_duration_seconds",
			Help:      "Time spent scoring one grade request",
			Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
		[]string{"language"},
	)

	GradeErrorsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "essaysim",
			Name:      "grade_errors_total",
			Help:      "Failed grade requests by error kind",
		},
		[]string{"kind"},
	)

	ScoreCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "essaysim",
			Name:      "score_cache_total",
			Help:      "Score cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	TruncationRank = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "essaysim",
			Name:      "truncation_rank",
			Help:      "Number of singular values kept by the LSA reducer",
			Buckets:   []float64{0, 1, 2, 3, 5, 8, 13, 21},
		},
	)
)

func init() {
	prometheus.MustRegister(GradesTotal)
	prometheus.MustRegister(ScoreDuration)
	prometheus.MustRegister(GradeErrorsTotal)
	prometheus.MustRegister(ScoreCacheTotal)
	prometheus.MustRegister(TruncationRank)
}
