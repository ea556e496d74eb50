// Package metrics holds the Prometheus collectors of the extraction engine.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "docfields"

// Metrics is safe for concurrent use. A nil *Metrics records nothing.
type Metrics struct {
	registry *prometheus.Registry

	Documents   *prometheus.CounterVec
	Pages       *prometheus.CounterVec
	Tables      *prometheus.CounterVec
	CellFailure prometheus.Counter
	Duration    *prometheus.HistogramVec
}

// New registers all collectors, plus the Go and process collectors, on a
// fresh registry.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		Documents: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_total",
			Help:      "Documents processed, by extraction method and outcome status.",
		}, []string{"method", "status"}),
		Pages: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "pages_total",
			Help:      "Pages read, by pipeline.",
		}, []string{"pipeline"}),
		Tables: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "tables_total",
			Help:      "Tables extracted, by classification.",
		}, []string{"kind"}),
		CellFailure: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ocr_cell_failures_total",
			Help:      "Cells whose recognition failed and degraded to empty text.",
		}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "processing_duration_seconds",
			Help:      "Wall time of a document extraction.",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120},
		}, []string{"entry"}),
	}
	m.registry.MustRegister(
		m.Documents, m.Pages, m.Tables, m.CellFailure, m.Duration,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	return m
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

func (m *Metrics) ObserveDocument(entry, method, status string, d time.Duration) {
	if m == nil {
		return
	}
	if method == "" {
		method = "none"
	}
	m.Documents.WithLabelValues(method, status).Inc()
	m.Duration.WithLabelValues(entry).Observe(d.Seconds())
}

func (m *Metrics) AddPages(pipeline string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.Pages.WithLabelValues(pipeline).Add(float64(n))
}

func (m *Metrics) IncTable(kind string) {
	if m == nil {
		return
	}
	m.Tables.WithLabelValues(kind).Inc()
}

// CellFailed matches the failure hook of ocr.CellRecognizer.
func (m *Metrics) CellFailed(error) {
	if m == nil {
		return
	}
	m.CellFailure.Inc()
}
