// Package metrics collects run statistics in a private Prometheus registry
// and writes them in the node-exporter textfile format.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the collectors of one run. A nil *Metrics records nothing.
type Metrics struct {
	reg *prometheus.Registry

	documentsTotal   *prometheus.CounterVec
	documentDuration prometheus.Histogram
	pagesTotal       prometheus.Counter
	pageDuration     prometheus.Histogram
	regionsDetected  prometheus.Histogram
	ocrCallsTotal    *prometheus.CounterVec
	textLength       prometheus.Histogram
}

// New registers all collectors in a fresh registry.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	f := promauto.With(reg)
	return &Metrics{
		reg: reg,
		documentsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "laytext_documents_total",
				Help: "Total number of processed documents",
			},
			[]string{"status"}, // status: success, error
		),
		documentDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "laytext_document_duration_seconds",
			Help:    "Document processing duration in seconds",
			Buckets: []float64{.1, .25, .5, 1, 2.5, 5, 10, 25, 50, 100, 250},
		}),
		pagesTotal: f.NewCounter(prometheus.CounterOpts{
			Name: "laytext_pages_total",
			Help: "Total number of processed pages",
		}),
		pageDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "laytext_page_duration_seconds",
			Help:    "Page processing duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		regionsDetected: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "laytext_regions_detected",
			Help:    "Number of text regions per page",
			Buckets: []float64{0, 1, 5, 10, 25, 50, 100, 250, 500},
		}),
		ocrCallsTotal: f.NewCounterVec(
			prometheus.CounterOpts{
				Name: "laytext_ocr_calls_total",
				Help: "Total number of OCR engine calls",
			},
			[]string{"pass", "status"}, // pass: primary, digits
		),
		textLength: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "laytext_text_length",
			Help:    "Length of extracted text per document",
			Buckets: []float64{0, 10, 50, 100, 500, 1000, 5000, 10000, 50000},
		}),
	}
}

// Registry exposes the underlying registry.
func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.reg
}

// ObserveDocument records one finished document.
func (m *Metrics) ObserveDocument(err error, textLen int, d time.Duration) {
	if m == nil {
		return
	}
	m.documentsTotal.WithLabelValues(status(err)).Inc()
	m.documentDuration.Observe(d.Seconds())
	if err == nil {
		m.textLength.Observe(float64(textLen))
	}
}

// ObservePage records one processed page.
func (m *Metrics) ObservePage(regions int, d time.Duration) {
	if m == nil {
		return
	}
	m.pagesTotal.Inc()
	m.pageDuration.Observe(d.Seconds())
	m.regionsDetected.Observe(float64(regions))
}

// ObserveOCR records one engine call for the given pass.
func (m *Metrics) ObserveOCR(pass string, err error) {
	if m == nil {
		return
	}
	m.ocrCallsTotal.WithLabelValues(pass, status(err)).Inc()
}

// WriteTextfile atomically writes all metrics to path.
func (m *Metrics) WriteTextfile(path string) error {
	if m == nil || path == "" {
		return nil
	}
	return prometheus.WriteToTextfile(path, m.reg)
}

func status(err error) string {
	if err != nil {
		return "error"
	}
	return "success"
}
