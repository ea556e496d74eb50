package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics_Record(t *testing.T) {
	m := New()
	m.ObserveDocument("document", "text-layer", "success", 120*time.Millisecond)
	m.ObserveDocument("document", "text-layer", "success", time.Second)
	m.ObserveDocument("image", "", "error", time.Millisecond)
	m.AddPages("text-layer", 3)
	m.AddPages("image-scan", 0)
	m.IncTable("products")
	m.CellFailed(errors.New("tesseract crashed"))

	assert.Equal(t, 2.0, testutil.ToFloat64(m.Documents.WithLabelValues("text-layer", "success")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Documents.WithLabelValues("none", "error")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.Pages.WithLabelValues("text-layer")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.Tables.WithLabelValues("products")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.CellFailure))
	assert.Equal(t, 2, testutil.CollectAndCount(m.Duration))
}

func TestMetrics_Handler(t *testing.T) {
	m := New()
	m.IncTable("totals")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	require.Equal(t, 200, rec.Code)
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(body), `docfields_tables_total{kind="totals"} 1`))
}

func TestMetrics_NilIsNoop(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveDocument("document", "x", "success", time.Second)
		m.AddPages("x", 1)
		m.IncTable("x")
		m.CellFailed(nil)
	})
	assert.Nil(t, m.Registry())
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	assert.Equal(t, 404, rec.Code)
}
