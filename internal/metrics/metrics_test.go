package metrics

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := New(reg)

	m.DocumentIngested("NATIVE")
	m.DocumentIngested("NATIVE")
	m.DocumentIngested("OCR")
	m.ExtractionFailed()
	m.DecodeFailed()
	m.SchemaMismatched()
	m.SchemaMismatched()
	m.SearchObserved(OutcomeOK, 3, 20*time.Millisecond)
	m.SearchObserved(OutcomeEmpty, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.documentsIngested.WithLabelValues("NATIVE")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.documentsIngested.WithLabelValues("OCR")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.extractionFailures))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.decodeFailures))
	assert.Equal(t, 2.0, testutil.ToFloat64(m.schemaMismatches))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.searchRequests.WithLabelValues(OutcomeOK)))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.candidatesScanned))

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.Len(t, families, 7)
}

func TestNilMetrics(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.DocumentIngested("NATIVE")
		m.ExtractionFailed()
		m.DecodeFailed()
		m.SchemaMismatched()
		m.SearchObserved(OutcomeError, 0, time.Second)
	})
}
