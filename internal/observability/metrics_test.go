package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestMetricsCountersAndHandler(t *testing.T) {
	m := NewMetrics()
	m.ObserveAPI("GET", "/api/models", "200", 5*time.Millisecond)
	m.IncFlowResolve("hit")
	m.IncFlowResolve("hit")
	m.IncJobSave("ok")

	if got := testutil.ToFloat64(m.flowResolves.WithLabelValues("hit")); got != 2 {
		t.Fatalf("flow resolves: want=2 got=%v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("unexpected status: %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"bmu_api_requests_total", "bmu_joblog_saves_total", "bmu_faultflow_resolves_total"} {
		if !strings.Contains(body, want) {
			t.Fatalf("exposition missing %s", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.IncFlowResolve("miss")
	m.IncStepTransition("pass", "terminal")
	m.IncJobSave("error")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}
