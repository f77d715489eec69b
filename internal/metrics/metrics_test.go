// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdiddy/safescan/pkg/types"
)

func scrape(t *testing.T, m *Metrics) string {
	t.Helper()
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body, err := io.ReadAll(rec.Body)
	require.NoError(t, err)
	return string(body)
}

func TestRecordAnalysis(t *testing.T) {
	m := New()
	m.RecordAnalysis("text", types.Output{
		Results: []types.PolicyResult{
			{Status: types.StatusUnsafe, Findings: []types.Finding{
				{Kind: types.KindAllergen, Source: types.SourceIngredients},
				{Kind: types.KindAllergen, Source: types.SourceContains},
			}},
			{Status: types.StatusSafe},
		},
	}, time.Millisecond)

	body := scrape(t, m)
	assert.Contains(t, body, `safescan_engine_profile_results_total{status="UNSAFE"} 1`)
	assert.Contains(t, body, `safescan_engine_profile_results_total{status="SAFE"} 1`)
	assert.Contains(t, body, `safescan_engine_findings_total{kind="ALLERGEN",source="contains"} 1`)
	assert.Contains(t, body, `safescan_engine_analysis_duration_seconds_count{input="text"} 1`)
}

func TestNilMetricsIsNoop(t *testing.T) {
	var m *Metrics
	m.RecordAnalysis("ocr", types.Output{}, 0)
	m.RecordAlert("failed")

	h := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusTeapot) })
	rec := httptest.NewRecorder()
	m.Middleware(h).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusTeapot, rec.Code)
}

func TestMiddleware(t *testing.T) {
	m := New()
	h := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))
	m.RecordAlert("published")

	body := scrape(t, m)
	assert.Contains(t, body, `safescan_http_requests_total{method="GET",path="/missing",status="404"} 1`)
	assert.Contains(t, body, `safescan_alerts_total{outcome="published"} 1`)
	assert.Contains(t, body, `safescan_http_in_flight_requests 0`)
}
