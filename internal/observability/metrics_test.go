package observability

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"
)

func TestMetricsMiddlewareRecordsRequests(t *testing.T) {
	m := NewMetrics()
	handler := m.Middleware(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	}))

	req := httptest.NewRequest(http.MethodGet, "/tableaux", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	if rec.Code != http.StatusTeapot {
		t.Fatalf("expected status %d got %d", http.StatusTeapot, rec.Code)
	}

	metricsRec := httptest.NewRecorder()
	m.Handler().ServeHTTP(metricsRec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := metricsRec.Body.String()
	if !strings.Contains(body, "tahiry_http_requests_total") {
		t.Fatalf("expected request counter in metrics output")
	}
}

func TestObserveTableauBuild(t *testing.T) {
	m := NewMetrics()
	m.ObserveTableauBuild(50*time.Millisecond, nil)
	m.ObserveTableauBuild(0, http.ErrServerClosed)
	m.ObserveCacheLookup(true)
	m.ObserveCacheLookup(false)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, want := range []string{
		`tahiry_tableau_builds_total{outcome="ok"} 1`,
		`tahiry_tableau_builds_total{outcome="error"} 1`,
		`tahiry_tableau_cache_lookups_total{result="hit"} 1`,
		`tahiry_tableau_cache_lookups_total{result="miss"} 1`,
	} {
		if !strings.Contains(body, want) {
			t.Fatalf("missing metric line %q in output", want)
		}
	}
}

func TestNilMetricsIsSafe(t *testing.T) {
	var m *Metrics
	m.ObserveTableauBuild(time.Second, nil)
	m.ObserveCacheLookup(false)
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {})
	if got := m.Middleware(next); got == nil {
		t.Fatalf("nil metrics middleware should pass through handler")
	}
	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503 from nil metrics handler got %d", rec.Code)
	}
}
