package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PrometheusMetrics implements MetricsClient, adapted from the teacher's
// pkg/observability.PrometheusMetricsClient: lazily registered
// counters/gauges/histograms keyed by metric name, so new label sets never
// require a code change at the registration site.
type PrometheusMetrics struct {
	namespace string

	mu         sync.RWMutex
	counters   map[string]*prometheus.CounterVec
	gauges     map[string]*prometheus.GaugeVec
	histograms map[string]*prometheus.HistogramVec

	registry *prometheus.Registry
}

func NewPrometheusMetrics(namespace string) *PrometheusMetrics {
	return &PrometheusMetrics{
		namespace:  namespace,
		counters:   make(map[string]*prometheus.CounterVec),
		gauges:     make(map[string]*prometheus.GaugeVec),
		histograms: make(map[string]*prometheus.HistogramVec),
		registry:   prometheus.NewRegistry(),
	}
}

// Registry exposes the underlying registry for /metrics to serve.
func (m *PrometheusMetrics) Registry() *prometheus.Registry { return m.registry }

func labelNames(labels map[string]string) []string {
	names := make([]string, 0, len(labels))
	for k := range labels {
		names = append(names, k)
	}
	return names
}

func (m *PrometheusMetrics) counter(name string, labels map[string]string) *prometheus.CounterVec {
	m.mu.Lock()
	defer m.mu.Unlock()
	c, ok := m.counters[name]
	if !ok {
		c = promauto.With(m.registry).NewCounterVec(prometheus.CounterOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      "counter for " + name,
		}, labelNames(labels))
		m.counters[name] = c
	}
	return c
}

func (m *PrometheusMetrics) histogram(name string, labels map[string]string) *prometheus.HistogramVec {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.histograms[name]
	if !ok {
		h = promauto.With(m.registry).NewHistogramVec(prometheus.HistogramOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      "histogram for " + name,
			Buckets:   prometheus.DefBuckets,
		}, labelNames(labels))
		m.histograms[name] = h
	}
	return h
}

func (m *PrometheusMetrics) gauge(name string, labels map[string]string) *prometheus.GaugeVec {
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.gauges[name]
	if !ok {
		g = promauto.With(m.registry).NewGaugeVec(prometheus.GaugeOpts{
			Namespace: m.namespace,
			Name:      name,
			Help:      "gauge for " + name,
		}, labelNames(labels))
		m.gauges[name] = g
	}
	return g
}

func (m *PrometheusMetrics) IncrementCounter(name string, labels map[string]string) {
	m.counter(name, labels).With(labels).Inc()
}

func (m *PrometheusMetrics) RecordHistogram(name string, value float64, labels map[string]string) {
	m.histogram(name, labels).With(labels).Observe(value)
}

func (m *PrometheusMetrics) RecordGauge(name string, value float64, labels map[string]string) {
	m.gauge(name, labels).With(labels).Set(value)
}

func (m *PrometheusMetrics) RecordDuration(name string, d time.Duration, labels map[string]string) {
	m.RecordHistogram(name, d.Seconds(), labels)
}

func (m *PrometheusMetrics) RecordCacheOperation(tier string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.IncrementCounter("cache_operations_total", map[string]string{"tier": tier, "result": result})
}
