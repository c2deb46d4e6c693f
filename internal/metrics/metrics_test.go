package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetrics(t *testing.T) {
	m := New()

	m.ObserveHTTPRequest(http.MethodGet, "/v1/alerts", 200, 15*time.Millisecond)
	m.ObserveHTTPRequest(http.MethodGet, "/v1/alerts", 200, 5*time.Millisecond)
	m.AddImportRows("clients", OutcomeImported, 3)
	m.AddImportRows("clients", OutcomeSkipped, 0)
	m.SetOpenAlerts("high", 4)
	m.IncEmail("alert-digest.html", false)
	m.IncCacheLookup("dashboard", true)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.httpRequests.WithLabelValues("GET", "/v1/alerts", "200")))
	assert.Equal(t, 3.0, testutil.ToFloat64(m.importRows.WithLabelValues("clients", OutcomeImported)))
	assert.Equal(t, 0.0, testutil.ToFloat64(m.importRows.WithLabelValues("clients", OutcomeSkipped)))
	assert.Equal(t, 4.0, testutil.ToFloat64(m.openAlerts.WithLabelValues("high")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.emails.WithLabelValues("alert-digest.html", "error")))

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "devicedesk_http_requests_total")
}

func TestMetrics_NilSafe(t *testing.T) {
	var m *Metrics
	assert.NotPanics(t, func() {
		m.ObserveHTTPRequest("GET", "/", 200, time.Millisecond)
		m.AddImportRows("clients", OutcomeFailed, 1)
		m.SetOpenAlerts("low", 1)
		m.IncEmail("x", true)
		m.IncCacheLookup("x", false)
	})
}
