package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountersAndHandler(t *testing.T) {
	m := MustNew(prometheus.NewRegistry())
	m.Transition("collecting-age", "collecting-date")
	m.Rejection("collecting-age")
	m.Rejection("collecting-age")
	m.RuleReload(false)
	m.SessionEvicted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	body := rec.Body.String()
	assert.True(t, strings.Contains(body, `oca_intake_transitions_total{from="collecting-age",to="collecting-date"} 1`))
	assert.True(t, strings.Contains(body, `oca_intake_rejections_total{state="collecting-age"} 2`))
	assert.True(t, strings.Contains(body, `oca_rules_reloads_total{result="error"} 1`))
	assert.True(t, strings.Contains(body, "oca_session_evictions_total 1"))
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.Transition("a", "b")
	m.Rejection("a")
	m.Analysis("intake")
	m.RuleError("x")
	m.RuleReload(true)
	m.SessionEvicted()

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
