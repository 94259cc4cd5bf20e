// Package metrics exposes Prometheus instrumentation for document operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Metrics struct {
	Uploads   *prometheus.CounterVec
	Deletions prometheus.Counter
	BytesIn   prometheus.Counter
}

func New() *Metrics {
	return &Metrics{
		Uploads: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "taxsync_documents_uploaded_total",
			Help: "Documents uploaded, labelled by document type.",
		}, []string{"doc_type"}),
		Deletions: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsync_documents_deleted_total",
			Help: "Documents deleted.",
		}),
		BytesIn: promauto.NewCounter(prometheus.CounterOpts{
			Name: "taxsync_document_bytes_received_total",
			Help: "Total uploaded document bytes accepted into blob storage.",
		}),
	}
}

func (m *Metrics) RecordUpload(docType string, sizeBytes int64) {
	if m == nil {
		return
	}
	m.Uploads.WithLabelValues(docType).Inc()
	m.BytesIn.Add(float64(sizeBytes))
}

func (m *Metrics) RecordDeletion() {
	if m == nil {
		return
	}
	m.Deletions.Inc()
}
