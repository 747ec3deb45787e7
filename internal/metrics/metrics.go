// Package metrics exposes Prometheus counters for GEDCOM import, export and
// validation.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Record kinds used as label values.
const (
	KindIndividual = "individual"
	KindFamily     = "family"
)

// Metrics provides observability for the tree service. A nil *Metrics is
// valid and records nothing.
type Metrics struct {
	registry *prometheus.Registry

	// Records decoded from imported files, by kind.
	RecordsDecoded *prometheus.CounterVec

	// Records written to exported files, by kind.
	RecordsEncoded *prometheus.CounterVec

	// Structural validator findings.
	ValidationIssues prometheus.Counter

	// Import outcomes by result ("ok" or "error").
	Imports *prometheus.CounterVec

	// Duration of a full Sync pass.
	SyncDuration prometheus.Histogram
}

// New creates a Metrics instance registered on its own registry, so several
// instances can coexist in tests.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		registry: reg,

		RecordsDecoded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familywiki_gedcom_records_decoded_total",
			Help: "Total GEDCOM records decoded by kind",
		}, []string{"kind"}),

		RecordsEncoded: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familywiki_gedcom_records_encoded_total",
			Help: "Total GEDCOM records encoded by kind",
		}, []string{"kind"}),

		ValidationIssues: f.NewCounter(prometheus.CounterOpts{
			Name: "familywiki_gedcom_validation_issues_total",
			Help: "Total structural issues reported by the GEDCOM validator",
		}),

		Imports: f.NewCounterVec(prometheus.CounterOpts{
			Name: "familywiki_tree_imports_total",
			Help: "Total tree file imports by result",
		}, []string{"result"}),

		SyncDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "familywiki_tree_sync_duration_seconds",
			Help:    "Duration of a full tree sync pass",
			Buckets: []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
		}),
	}
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return http.NotFoundHandler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry returns the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

// ObserveDecoded records the records found in one decoded document.
func (m *Metrics) ObserveDecoded(individuals, families int) {
	if m != nil {
		m.RecordsDecoded.WithLabelValues(KindIndividual).Add(float64(individuals))
		m.RecordsDecoded.WithLabelValues(KindFamily).Add(float64(families))
	}
}

// ObserveEncoded records the records written to one exported document.
func (m *Metrics) ObserveEncoded(individuals, families int) {
	if m != nil {
		m.RecordsEncoded.WithLabelValues(KindIndividual).Add(float64(individuals))
		m.RecordsEncoded.WithLabelValues(KindFamily).Add(float64(families))
	}
}

// ObserveValidation records validator findings.
func (m *Metrics) ObserveValidation(issues int) {
	if m != nil {
		m.ValidationIssues.Add(float64(issues))
	}
}

// IncrementImport records the outcome of one file import.
func (m *Metrics) IncrementImport(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.Imports.WithLabelValues(result).Inc()
}

// ObserveSync records the duration of a sync pass.
func (m *Metrics) ObserveSync(d time.Duration) {
	if m != nil {
		m.SyncDuration.Observe(d.Seconds())
	}
}
