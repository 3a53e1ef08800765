package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const (
	namespace = "fuelreceipts"

	ResultSuccess  = "success"
	ResultError    = "error"
	ResultRejected = "rejected"
)

// Metrics bundles the service collectors on a private registry.
type Metrics struct {
	registry *prometheus.Registry

	GenerationsTotal  *prometheus.CounterVec
	GenerationLatency *prometheus.HistogramVec
	ReceiptsTotal     prometheus.Counter
	PriceSourceTotal  *prometheus.CounterVec
	ArchiveWrites     *prometheus.CounterVec
	HTTPRequests      *prometheus.CounterVec
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		GenerationsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "generations_total",
				Help:      "Total yearly generations by result",
			},
			[]string{"result"},
		),
		GenerationLatency: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "generation_latency_seconds",
				Help:      "Yearly generation latency in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"result"},
		),
		ReceiptsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "receipts_total",
			Help:      "Total synthesized receipts",
		}),
		PriceSourceTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "price_series_total",
				Help:      "Price series built by source (live or fallback reason)",
			},
			[]string{"source"},
		),
		ArchiveWrites: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "archive_writes_total",
				Help:      "Price archive writes by result",
			},
			[]string{"result"},
		),
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "HTTP requests by route and status code",
			},
			[]string{"route", "code"},
		),
	}
	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.GenerationsTotal,
		m.GenerationLatency,
		m.ReceiptsTotal,
		m.PriceSourceTotal,
		m.ArchiveWrites,
		m.HTTPRequests,
	)
	return m
}

// Registry exposes the underlying registry for gathering in tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.registry }

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// ObserveGeneration records one yearly generation. Nil receivers are no-ops.
func (m *Metrics) ObserveGeneration(result string, elapsed time.Duration, receipts int) {
	if m == nil {
		return
	}
	m.GenerationsTotal.WithLabelValues(result).Inc()
	m.GenerationLatency.WithLabelValues(result).Observe(elapsed.Seconds())
	if receipts > 0 {
		m.ReceiptsTotal.Add(float64(receipts))
	}
}

// ObservePriceSource counts live series against fallbacks.
func (m *Metrics) ObservePriceSource(source string) {
	if m == nil {
		return
	}
	m.PriceSourceTotal.WithLabelValues(source).Inc()
}

// ObserveArchiveWrite counts archive inserts.
func (m *Metrics) ObserveArchiveWrite(err error) {
	if m == nil {
		return
	}
	result := ResultSuccess
	if err != nil {
		result = ResultError
	}
	m.ArchiveWrites.WithLabelValues(result).Inc()
}

// ObserveHTTP counts a served request.
func (m *Metrics) ObserveHTTP(route, code string) {
	if m == nil {
		return
	}
	m.HTTPRequests.WithLabelValues(route, code).Inc()
}
