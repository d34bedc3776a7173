package metrics

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"vessel-registry/internal/core/ports/output"
)

func TestNoop(t *testing.T) {
	var m Noop
	m.ObserveRegistration(ports.OutcomeCreated, 10, time.Second)
	m.ObserveRequest("GET", "/healthz", "200", time.Millisecond)
}

func TestProm_ObserveRegistration(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProm("vessel", reg)

	m.ObserveRegistration(ports.OutcomeCreated, 1024, 20*time.Millisecond)
	m.ObserveRegistration(ports.OutcomeCreated, 2048, 30*time.Millisecond)
	m.ObserveRegistration(ports.OutcomeDuplicate, 0, time.Millisecond)

	assert.Equal(t, 2.0, testutil.ToFloat64(m.registrations.WithLabelValues(ports.OutcomeCreated)))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.registrations.WithLabelValues(ports.OutcomeDuplicate)))
	assert.Equal(t, 3072.0, testutil.ToFloat64(m.ingestedBytes))
	assert.Equal(t, 2, testutil.CollectAndCount(m.registerLatency))
}

func TestProm_ObserveRequest(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProm("vessel", reg)

	m.ObserveRequest("POST", "/api/v0/models/:id/versions", "201", 50*time.Millisecond)

	expected := `
# HELP vessel_http_requests_total HTTP requests by method/route/status
# TYPE vessel_http_requests_total counter
vessel_http_requests_total{method="POST",route="/api/v0/models/:id/versions",status="201"} 1
`
	require.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "vessel_http_requests_total"))
}

func TestHandler_ServesRegistry(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewProm("vessel", reg)
	m.ObserveRegistration(ports.OutcomeDeduplicated, 1, time.Millisecond)

	w := httptest.NewRecorder()
	Handler(reg).ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `vessel_version_registrations_total{outcome="deduplicated"} 1`)
}
