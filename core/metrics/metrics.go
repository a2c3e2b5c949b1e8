// Package metrics exposes Prometheus collectors for the dispatch pipeline
// and the response cache.
package metrics

import (
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// Metrics implements pipeline.Observer on top of Prometheus collectors.
type Metrics struct {
	// Requests counts dispatched requests by method and status class.
	Requests *prometheus.CounterVec
	// Duration records dispatch latency by method.
	Duration *prometheus.HistogramVec
	// StageFailures counts failures by lifecycle stage.
	StageFailures *prometheus.CounterVec
	// CacheLookups counts pipeline cache lookups by result.
	CacheLookups *prometheus.CounterVec
	// CachedEntries is the number of responses in the memory cache by cache name.
	CachedEntries *prometheus.GaugeVec
	// CacheRequests counts memory cache lookups by cache name and result.
	CacheRequests *prometheus.CounterVec
}

// New creates the collectors. Names are prefixed with namespace.
func New(namespace string) *Metrics {
	return &Metrics{
		Requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "requests_total",
			Help:      "The number of dispatched requests",
		}, []string{"method", "code"}),
		Duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "request_duration_seconds",
			Help:      "Dispatch duration from arrival to response",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method"}),
		StageFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_failures_total",
			Help:      "The number of failures per lifecycle stage",
		}, []string{"stage"}),
		CacheLookups: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_lookups_total",
			Help:      "The number of response cache lookups",
		}, []string{"result"}),
		CachedEntries: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "cached_entries",
			Help:      "The number of entries in the memory cache",
		}, []string{"cache"}),
		CacheRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "cache_requests_total",
			Help:      "The number of memory cache lookups",
		}, []string{"cache", "result"}),
	}
}

// Register adds every collector to reg.
func (m *Metrics) Register(reg prometheus.Registerer) error {
	for _, c := range m.collectors() {
		if err := reg.Register(c); err != nil {
			return err
		}
	}
	return nil
}

// MustRegister is like Register but panics on error.
func (m *Metrics) MustRegister(reg prometheus.Registerer) {
	reg.MustRegister(m.collectors()...)
}

func (m *Metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{
		m.Requests,
		m.Duration,
		m.StageFailures,
		m.CacheLookups,
		m.CachedEntries,
		m.CacheRequests,
	}
}

// ObserveDispatch records a finished request.
func (m *Metrics) ObserveDispatch(method string, status int, d time.Duration) {
	m.Requests.WithLabelValues(method, statusClass(status)).Inc()
	m.Duration.WithLabelValues(method).Observe(d.Seconds())
}

// StageFailed records a failure in stage.
func (m *Metrics) StageFailed(stage string) {
	m.StageFailures.WithLabelValues(stage).Inc()
}

// CacheLookup records a cache hit or miss.
func (m *Metrics) CacheLookup(hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	m.CacheLookups.WithLabelValues(result).Inc()
}

func statusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return strconv.Itoa(status/100) + "xx"
}
