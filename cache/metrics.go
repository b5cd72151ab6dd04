package cache

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// metrics holds the Prometheus collectors for one cache instance. A
// nil *metrics disables recording, so every method is nil-safe.
type metrics struct {
	hits            prometheus.Counter
	misses          prometheus.Counter
	evictions       prometheus.Counter
	expirations     prometheus.Counter
	itemCount       prometheus.Gauge
	computeDuration prometheus.Histogram
}

// newMetrics creates and registers the collectors. An empty namespace
// disables metrics entirely; a nil registerer means the default one.
func newMetrics(namespace string, reg prometheus.Registerer) *metrics {
	if namespace == "" {
		return nil
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}

	m := &metrics{
		hits: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_hits_total",
			Help:      "Number of cache hits",
		}),
		misses: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_misses_total",
			Help:      "Number of cache misses",
		}),
		evictions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_evictions_total",
			Help:      "Number of cache evictions",
		}),
		expirations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_expirations_total",
			Help:      "Number of expired cache entries",
		}),
		itemCount: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cache_items",
			Help:      "Number of items in cache",
		}),
		computeDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "cache_compute_duration_seconds",
			Help:      "Duration of compute operations",
			Buckets:   []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1},
		}),
	}

	reg.MustRegister(
		m.hits,
		m.misses,
		m.evictions,
		m.expirations,
		m.itemCount,
		m.computeDuration,
	)

	return m
}

func (m *metrics) hit() {
	if m == nil {
		return
	}
	m.hits.Inc()
}

func (m *metrics) miss() {
	if m == nil {
		return
	}
	m.misses.Inc()
}

func (m *metrics) evict() {
	if m == nil {
		return
	}
	m.evictions.Inc()
}

func (m *metrics) expire() {
	if m == nil {
		return
	}
	m.expirations.Inc()
}

func (m *metrics) setSize(n int) {
	if m == nil {
		return
	}
	m.itemCount.Set(float64(n))
}

func (m *metrics) observeCompute(d time.Duration) {
	if m == nil {
		return
	}
	m.computeDuration.Observe(d.Seconds())
}
