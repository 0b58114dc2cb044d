package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	questionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_questions_total",
			Help: "Questions handled by the assistant pipeline, by outcome.",
		},
		[]string{"outcome"},
	)
	stageDurationSeconds = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "assistant_stage_duration_seconds",
			Help:    "Pipeline stage latency.",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
		[]string{"stage"},
	)
	validationRejectionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_validation_rejections_total",
			Help: "Candidate queries rejected by the validator, by category.",
		},
		[]string{"category"},
	)
	queryComplexityTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "assistant_query_complexity_total",
			Help: "Executed queries by estimated cost class.",
		},
		[]string{"cost"},
	)
	resultRows = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "assistant_result_rows",
			Help:    "Row counts returned by executed queries.",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100},
		},
	)
)

func init() {
	prometheus.MustRegister(
		questionsTotal,
		stageDurationSeconds,
		validationRejectionsTotal,
		queryComplexityTotal,
		resultRows,
	)
}

// Outcome labels for ObserveQuestion. These mirror the pipeline's response
// paths: one label per way a question can leave the pipeline.
const (
	OutcomeAnswered         = "answered"
	OutcomeOffTopic         = "off_topic"
	OutcomeGenerationFailed = "generation_failed"
	OutcomeRejected         = "rejected"
	OutcomeSynthesisFailed  = "synthesis_failed"
	OutcomeCached           = "cached"
)

func ObserveQuestion(outcome string) {
	questionsTotal.WithLabelValues(outcome).Inc()
}

func ObserveStage(stage string, elapsed time.Duration) {
	stageDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())
}

func ObserveValidationRejection(category string) {
	validationRejectionsTotal.WithLabelValues(category).Inc()
}

func ObserveQueryComplexity(cost string) {
	queryComplexityTotal.WithLabelValues(cost).Inc()
}

func ObserveResultRows(rows int) {
	resultRows.Observe(float64(rows))
}
