// Package metrics holds the Prometheus collectors of the ingestion and search
// pipelines. A nil *Metrics is valid and records nothing.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "catalogue"

// Search outcomes.
const (
	OutcomeOK    = "ok"
	OutcomeEmpty = "empty"
	OutcomeError = "error"
	OutcomeCache = "cache"
)

type Metrics struct {
	documentsIngested  *prometheus.CounterVec
	extractionFailures prometheus.Counter
	decodeFailures     prometheus.Counter
	schemaMismatches   prometheus.Counter
	searchRequests     *prometheus.CounterVec
	searchLatency      prometheus.Histogram
	candidatesScanned  prometheus.Counter
}

// New registers the collectors with reg.
func New(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		documentsIngested: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "documents_ingested_total",
			Help:      "Documents ingested, by extraction method.",
		}, []string{"method"}),
		extractionFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "extraction_failures_total",
			Help:      "Documents whose text could not be extracted.",
		}),
		decodeFailures: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "decode_failures_total",
			Help:      "Structuring payloads that yielded no records.",
		}),
		schemaMismatches: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "schema_mismatches_total",
			Help:      "Structuring payloads that do not match the product schema.",
		}),
		searchRequests: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_requests_total",
			Help:      "Search requests, by outcome.",
		}, []string{"outcome"}),
		searchLatency: f.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search pipeline latency.",
			Buckets:   prometheus.DefBuckets,
		}),
		candidatesScanned: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_candidates_total",
			Help:      "Candidates returned by the store and run through the confirmation filter.",
		}),
	}
}

func (m *Metrics) DocumentIngested(method string) {
	if m == nil {
		return
	}
	m.documentsIngested.WithLabelValues(method).Inc()
}

func (m *Metrics) ExtractionFailed() {
	if m == nil {
		return
	}
	m.extractionFailures.Inc()
}

func (m *Metrics) DecodeFailed() {
	if m == nil {
		return
	}
	m.decodeFailures.Inc()
}

func (m *Metrics) SchemaMismatched() {
	if m == nil {
		return
	}
	m.schemaMismatches.Inc()
}

func (m *Metrics) SearchObserved(outcome string, candidates int, elapsed time.Duration) {
	if m == nil {
		return
	}
	m.searchRequests.WithLabelValues(outcome).Inc()
	m.candidatesScanned.Add(float64(candidates))
	m.searchLatency.Observe(elapsed.Seconds())
}
