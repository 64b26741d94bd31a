package telemetry

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	b, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(b)
}

func TestMetrics_Exposition(t *testing.T) {
	m := New()
	m.ObserveRequest(http.MethodPost, "/reports/monthly", 200, 15*time.Millisecond)
	m.RowsNormalized(12)
	m.ParseError()
	m.ReportGenerated("monthly")

	out := scrape(t, m)
	assert.Contains(t, out, `stayreport_http_requests_total{method="POST",route="/reports/monthly",status="200"} 1`)
	assert.Contains(t, out, "stayreport_rows_normalized_total 12")
	assert.Contains(t, out, "stayreport_parse_errors_total 1")
	assert.Contains(t, out, `stayreport_reports_generated_total{kind="monthly"} 1`)
	assert.Contains(t, out, "go_goroutines")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveRequest("GET", "/", 200, time.Second)
		m.RowsNormalized(1)
		m.ParseError()
		m.ReportGenerated("trend")
	})
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
