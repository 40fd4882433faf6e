// Package observability exposes Prometheus metrics for the storefront edge.
// Every method is safe to call on a nil *Metrics so components can run
// without instrumentation in tests.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const defaultNamespace = "grailify"

type Metrics struct {
	registry *prometheus.Registry

	ChartRenders   *prometheus.CounterVec
	Probes         *prometheus.CounterVec
	CacheLookups   *prometheus.CounterVec
	CatalogLatency *prometheus.HistogramVec
	CatalogErrors  *prometheus.CounterVec
	CartMutations  *prometheus.CounterVec
	WarmRefreshes  *prometheus.CounterVec
}

// NewMetrics registers all collectors on a private registry.
func NewMetrics(namespace string) *Metrics {
	if namespace == "" {
		namespace = defaultNamespace
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,
		ChartRenders: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "renders_total",
			Help:      "Charts rendered by output format and whether data was sufficient",
		}, []string{"format", "result"}),
		Probes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "chart",
			Name:      "probes_total",
			Help:      "Pointer probes by outcome",
		}, []string{"result"}),
		CacheLookups: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cache",
			Name:      "lookups_total",
			Help:      "Item cache lookups by outcome",
		}, []string{"result"}),
		CatalogLatency: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "request_duration_seconds",
			Help:      "Catalog API latency by operation",
			Buckets:   prometheus.DefBuckets,
		}, []string{"operation"}),
		CatalogErrors: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "catalog",
			Name:      "errors_total",
			Help:      "Failed catalog API calls by operation",
		}, []string{"operation"}),
		CartMutations: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "cart",
			Name:      "mutations_total",
			Help:      "Cart changes by operation",
		}, []string{"operation"}),
		WarmRefreshes: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "warmer",
			Name:      "refreshes_total",
			Help:      "Item refreshes performed by the trending warmer",
		}, []string{"result"}),
	}
}

// Handler serves the registry in the Prometheus text format.
func (m *Metrics) Handler() http.Handler {
	if m == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

func (m *Metrics) Registry() *prometheus.Registry {
	if m == nil {
		return nil
	}
	return m.registry
}

func (m *Metrics) ChartRendered(format string, insufficient bool) {
	if m == nil {
		return
	}
	result := "plotted"
	if insufficient {
		result = "insufficient"
	}
	m.ChartRenders.WithLabelValues(format, result).Inc()
}

func (m *Metrics) ProbeResolved(hit bool) {
	if m == nil {
		return
	}
	m.Probes.WithLabelValues(outcome(hit)).Inc()
}

func (m *Metrics) CacheLookup(hit bool) {
	if m == nil {
		return
	}
	m.CacheLookups.WithLabelValues(outcome(hit)).Inc()
}

// CatalogCall records latency since start and counts err when non-nil.
func (m *Metrics) CatalogCall(operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	m.CatalogLatency.WithLabelValues(operation).Observe(time.Since(start).Seconds())
	if err != nil {
		m.CatalogErrors.WithLabelValues(operation).Inc()
	}
}

func (m *Metrics) CartMutated(operation string) {
	if m == nil {
		return
	}
	m.CartMutations.WithLabelValues(operation).Inc()
}

func (m *Metrics) WarmRefreshed(err error) {
	if m == nil {
		return
	}
	result := "ok"
	if err != nil {
		result = "error"
	}
	m.WarmRefreshes.WithLabelValues(result).Inc()
}

func outcome(hit bool) string {
	if hit {
		return "hit"
	}
	return "miss"
}
