// Package metrics provides observability for the validation module.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for validation runs.
type Metrics struct {
	// Run outcomes: "completed" or "failed"
	RunsTotal *prometheus.CounterVec

	// Findings emitted per run, by status
	FindingsTotal *prometheus.CounterVec

	// Full run latency including snapshot loading and persistence
	RunDuration prometheus.Histogram

	// Distribution of computed completeness scores
	ScoreDistribution prometheus.Histogram
}

// New creates a Metrics instance with all validation module metrics registered.
func New() *Metrics {
	return &Metrics{
		RunsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsync_validation_runs_total",
			Help: "Total validation runs by outcome",
		}, []string{"outcome"}),

		FindingsTotal: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsync_validation_findings_total",
			Help: "Total findings emitted by status",
		}, []string{"status"}),

		RunDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxsync_validation_run_duration_seconds",
			Help:    "Duration of full validation runs including loading and persistence",
			Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5},
		}),

		ScoreDistribution: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "taxsync_validation_completeness_score",
			Help:    "Distribution of computed completeness scores",
			Buckets: []float64{0, 10, 25, 50, 75, 90, 100},
		}),
	}
}

// RecordRun records one completed or failed validation run.
func (m *Metrics) RecordRun(outcome string, d time.Duration) {
	if m != nil {
		m.RunsTotal.WithLabelValues(outcome).Inc()
		m.RunDuration.Observe(d.Seconds())
	}
}

// RecordFinding counts one emitted finding by status.
func (m *Metrics) RecordFinding(status string) {
	if m != nil {
		m.FindingsTotal.WithLabelValues(status).Inc()
	}
}

// RecordScore records a computed completeness score.
func (m *Metrics) RecordScore(score int) {
	if m != nil {
		m.ScoreDistribution.Observe(float64(score))
	}
}
