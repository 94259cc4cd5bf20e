// Package metrics provides observability for the tax year module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for tax year lifecycle operations.
type Metrics struct {
	YearsCreated prometheus.Counter

	// Lifecycle transitions by target status
	Transitions *prometheus.CounterVec
}

// New creates a Metrics instance with all tax year module metrics registered.
func New() *Metrics {
	return &Metrics{
		YearsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsync_tax_years_created_total",
			Help: "Total tax years lazily created",
		}),
		Transitions: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsync_tax_year_transitions_total",
			Help: "Total lifecycle transitions by target status",
		}, []string{"to"}),
	}
}

func (m *Metrics) RecordCreated() {
	if m != nil {
		m.YearsCreated.Inc()
	}
}

func (m *Metrics) RecordTransition(to string) {
	if m != nil {
		m.Transitions.WithLabelValues(to).Inc()
	}
}
