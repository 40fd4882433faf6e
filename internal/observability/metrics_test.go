package observability

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ChartRendered("svg", false)
	m.ProbeResolved(true)
	m.CacheLookup(false)
	m.CatalogCall("fetch-item", time.Now(), errors.New("boom"))
	m.CartMutated("add")
	m.WarmRefreshed(nil)
	if m.Registry() != nil {
		t.Fatal("expected nil registry")
	}
}

func TestMetricsCount(t *testing.T) {
	m := NewMetrics("")

	m.ChartRendered("svg", true)
	m.ChartRendered("svg", true)
	m.ProbeResolved(false)
	m.CacheLookup(true)
	m.CatalogCall("fetch-item", time.Now(), errors.New("timeout"))
	m.CatalogCall("fetch-item", time.Now(), nil)
	m.CartMutated("remove")

	if got := testutil.ToFloat64(m.ChartRenders.WithLabelValues("svg", "insufficient")); got != 2 {
		t.Fatalf("expected 2 insufficient renders, got %v", got)
	}
	if got := testutil.ToFloat64(m.Probes.WithLabelValues("miss")); got != 1 {
		t.Fatalf("expected 1 probe miss, got %v", got)
	}
	if got := testutil.ToFloat64(m.CatalogErrors.WithLabelValues("fetch-item")); got != 1 {
		t.Fatalf("expected 1 catalog error, got %v", got)
	}
	if got := testutil.ToFloat64(m.CartMutations.WithLabelValues("remove")); got != 1 {
		t.Fatalf("expected 1 cart mutation, got %v", got)
	}
}

func TestNewMetricsTwiceDoesNotPanic(t *testing.T) {
	NewMetrics("a")
	NewMetrics("a")
}

func TestHandlerServesRegistry(t *testing.T) {
	m := NewMetrics("grailify")
	m.CacheLookup(true)

	w := httptest.NewRecorder()
	m.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), "grailify_cache_lookups_total") {
		t.Fatalf("metrics output missing cache counter")
	}
}
