// Package metrics provides observability for the client module.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for client lifecycle operations.
type Metrics struct {
	ClientsCreated     prometheus.Counter
	ClientsDeactivated prometheus.Counter
}

// New creates a Metrics instance with all client module metrics registered.
func New() *Metrics {
	return &Metrics{
		ClientsCreated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsync_clients_created_total",
			Help: "Total clients created",
		}),
		ClientsDeactivated: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsync_clients_deactivated_total",
			Help: "Total clients deactivated",
		}),
	}
}

func (m *Metrics) RecordCreated() {
	if m != nil {
		m.ClientsCreated.Inc()
	}
}

func (m *Metrics) RecordDeactivated() {
	if m != nil {
		m.ClientsDeactivated.Inc()
	}
}
