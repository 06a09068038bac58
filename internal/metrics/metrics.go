package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/hyperifyio/textextract/internal/extract"
	"github.com/hyperifyio/textextract/internal/patterns"
)

const namespace = "textextract"

// Metrics owns a private Prometheus registry so independent servers (and
// tests) never collide on the global default registry.
type Metrics struct {
	registry    *prometheus.Registry
	requests    *prometheus.CounterVec
	extractions prometheus.Counter
	matches     *prometheus.CounterVec
	inputBytes  prometheus.Histogram
}

// New registers the extraction collectors plus the Go runtime and process
// collectors.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests served, by method and status code.",
		}, []string{"code", "method"}),
		extractions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extractions_total",
			Help:      "Extraction runs performed.",
		}),
		matches: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "matches_total",
			Help:      "Unique matches reported, by category.",
		}, []string{"category"}),
		inputBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "input_bytes",
			Help:      "Size of submitted text in bytes.",
			Buckets:   prometheus.ExponentialBuckets(64, 4, 8),
		}),
	}
	m.registry.MustRegister(
		m.requests,
		m.extractions,
		m.matches,
		m.inputBytes,
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	// Pre-create every category series so dashboards see zeros, not gaps.
	for _, name := range patterns.Names() {
		m.matches.WithLabelValues(string(name))
	}
	return m
}

// ObserveExtraction records one extraction run over inputLen bytes.
func (m *Metrics) ObserveExtraction(inputLen int, res extract.Result) {
	if m == nil {
		return
	}
	m.extractions.Inc()
	m.inputBytes.Observe(float64(inputLen))
	for _, c := range res.Categories() {
		m.matches.WithLabelValues(string(c.Category)).Add(float64(c.Count()))
	}
}

// InstrumentHandler counts requests passing through next.
func (m *Metrics) InstrumentHandler(next http.Handler) http.Handler {
	if m == nil {
		return next
	}
	return promhttp.InstrumentHandlerCounter(m.requests, next)
}

// Handler exposes the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
