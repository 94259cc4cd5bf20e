// Package metrics exposes Prometheus instrumentation for auth operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Logins   *prometheus.CounterVec
	Lockouts prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Logins: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsync_logins_total",
			Help: "Login attempts, labelled by outcome.",
		}, []string{"outcome"}),
		Lockouts: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsync_auth_lockouts_total",
			Help: "Accounts locked after repeated login failures.",
		}),
	}
}

func (m *Metrics) RecordLogin(outcome string) {
	if m == nil {
		return
	}
	m.Logins.WithLabelValues(outcome).Inc()
}

func (m *Metrics) RecordLockout() {
	if m == nil {
		return
	}
	m.Lockouts.Inc()
}
