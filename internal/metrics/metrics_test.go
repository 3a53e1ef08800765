package metrics

import (
	"errors"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveGeneration(t *testing.T) {
	m := New()
	m.ObserveGeneration(ResultSuccess, 20*time.Millisecond, 60)
	m.ObserveGeneration(ResultRejected, time.Millisecond, 0)

	if got := testutil.ToFloat64(m.GenerationsTotal.WithLabelValues(ResultSuccess)); got != 1 {
		t.Fatalf("expected 1 success, got %v", got)
	}
	if got := testutil.ToFloat64(m.ReceiptsTotal); got != 60 {
		t.Fatalf("expected 60 receipts, got %v", got)
	}
}

func TestObserveArchiveWrite(t *testing.T) {
	m := New()
	m.ObserveArchiveWrite(nil)
	m.ObserveArchiveWrite(errors.New("boom"))
	m.ObserveArchiveWrite(errors.New("boom"))

	if got := testutil.ToFloat64(m.ArchiveWrites.WithLabelValues(ResultError)); got != 2 {
		t.Fatalf("expected 2 errors, got %v", got)
	}
}

func TestNilMetricsAreNoops(t *testing.T) {
	var m *Metrics
	m.ObserveGeneration(ResultError, time.Second, 1)
	m.ObservePriceSource("live")
	m.ObserveArchiveWrite(nil)
	m.ObserveHTTP("/healthz", "200")
}

func TestHandlerExposesCollectors(t *testing.T) {
	m := New()
	m.ObservePriceSource("fallback_empty")

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest("GET", "/metrics", nil))

	body, _ := io.ReadAll(rec.Body)
	if !strings.Contains(string(body), `fuelreceipts_price_series_total{source="fallback_empty"} 1`) {
		t.Fatalf("metric missing from exposition:\n%s", body)
	}
}
