package observability

import (
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreSafe(t *testing.T) {
	var m *Metrics
	m.ObserveAPI("GET", "/x", "200", time.Millisecond)
	m.ApiInflightInc()
	m.ApiInflightDec()
	m.IncAggregateConflict("progress.record")
	m.PoolSaturated("store", "rejected")
	if m.Registry() != nil {
		t.Fatalf("nil metrics should have no registry")
	}
}

func TestObserveAPIAndExposition(t *testing.T) {
	m := New()
	m.ObserveAPI("GET", "/api/lessons", "200", 20*time.Millisecond)
	m.ObserveAPI("GET", "/api/lessons", "200", 30*time.Millisecond)
	if got := testutil.ToFloat64(m.apiRequests.WithLabelValues("GET", "/api/lessons", "200")); got != 2 {
		t.Fatalf("expected 2 requests, got %v", got)
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))
	if rec.Code != 200 {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "tutor_api_requests_total") {
		t.Fatalf("exposition missing api counter")
	}
}

func TestAggregateAndPoolCounters(t *testing.T) {
	m := New()
	m.IncAggregateConflict("progress.record")
	m.IncAggregateRetry("progress.record")
	m.PoolSaturated("store", "rejected")
	m.PoolAcquired("store", time.Millisecond)
	if got := testutil.ToFloat64(m.aggregateConflicts.WithLabelValues("progress.record")); got != 1 {
		t.Fatalf("conflicts = %v", got)
	}
	if got := testutil.ToFloat64(m.poolInflight.WithLabelValues("store")); got != 1 {
		t.Fatalf("inflight = %v", got)
	}
	m.PoolReleased("store")
	if got := testutil.ToFloat64(m.poolInflight.WithLabelValues("store")); got != 0 {
		t.Fatalf("inflight after release = %v", got)
	}
}
