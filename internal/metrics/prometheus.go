package metrics

import (
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	StructuringTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_structuring_total",
			Help: "Total structuring attempts",
		},
		[]string{"kind", "status"},
	)

	StructuringDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "sanctuary_structuring_duration_seconds",
			Help:    "Structuring call duration in seconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 20, 30},
		},
		[]string{"kind"},
	)

	MatchingRunsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_matching_runs_total",
			Help: "Total matching pipeline runs",
		},
		[]string{"status"},
	)

	MatchingRunDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sanctuary_matching_run_duration_seconds",
			Help:    "End-to-end matching run duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120, 300},
		},
	)

	BatchScoringDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sanctuary_batch_scoring_duration_seconds",
			Help:    "Single batch scoring call duration in seconds",
			Buckets: []float64{1, 5, 10, 30, 60, 120},
		},
	)

	MatchesGenerated = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "sanctuary_matches_generated_total",
			Help: "Total matches persisted by the pipeline",
		},
	)

	MatchScore = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sanctuary_match_score",
			Help:    "Distribution of persisted match scores",
			Buckets: []float64{40, 50, 60, 70, 80, 90, 100},
		},
	)

	CandidatesScored = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "sanctuary_candidates_scored",
			Help:    "Number of candidate experiences scored per run",
			Buckets: []float64{0, 1, 5, 10, 20, 50, 100, 200},
		},
	)

	LLMTokensUsed = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_llm_tokens_used",
			Help: "Total LLM tokens used",
		},
		[]string{"model", "type"},
	)

	LLMCallsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_llm_calls_total",
			Help: "Total LLM API calls",
		},
		[]string{"operation", "status"},
	)

	FeedbackTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_feedback_total",
			Help: "Total feedback submissions",
		},
		[]string{"rating"},
	)

	WeightAdjustmentApplied = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "sanctuary_weight_adjustment_applied",
			Help: "1 when adjusted weights are in use, 0 when baseline",
		},
	)

	RateLimitRejections = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "sanctuary_rate_limit_rejections_total",
			Help: "Total requests rejected by rate limiting",
		},
		[]string{"limiter"},
	)
)

func Init() {
	prometheus.MustRegister(StructuringTotal)
	prometheus.MustRegister(StructuringDuration)
	prometheus.MustRegister(MatchingRunsTotal)
	prometheus.MustRegister(MatchingRunDuration)
	prometheus.MustRegister(BatchScoringDuration)
	prometheus.MustRegister(MatchesGenerated)
	prometheus.MustRegister(MatchScore)
	prometheus.MustRegister(CandidatesScored)
	prometheus.MustRegister(LLMTokensUsed)
	prometheus.MustRegister(LLMCallsTotal)
	prometheus.MustRegister(FeedbackTotal)
	prometheus.MustRegister(WeightAdjustmentApplied)
	prometheus.MustRegister(RateLimitRejections)
}

func MetricsHandler() fiber.Handler {
	return adaptor.HTTPHandler(promhttp.Handler())
}
