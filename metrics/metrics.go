package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Modes label how a header set was produced.
const (
	ModeNonce  = "nonce"
	ModeStatic = "static"
)

// Collector records header generation metrics.
type Collector struct {
	generated   *prometheus.CounterVec
	failures    *prometheus.CounterVec
	duration    *prometheus.HistogramVec
	cacheLookup *prometheus.CounterVec
	cacheServed prometheus.Counter
	gatherer    prometheus.Gatherer
}

// New registers the collector's metrics on a fresh registry.
func New() *Collector {
	registry := prometheus.NewRegistry()
	collector, err := NewWithRegisterer(registry)
	if err != nil {
		// A fresh registry has no conflicting collectors.
		panic(err)
	}
	return collector
}

// NewWithRegisterer registers the collector's metrics on reg.
func NewWithRegisterer(reg prometheus.Registerer) (*Collector, error) {
	c := &Collector{
		generated: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secureheaders",
			Name:      "generated_total",
			Help:      "Header sets generated, by mode.",
		}, []string{"mode"}),
		failures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secureheaders",
			Name:      "failures_total",
			Help:      "Header generation failures, by error code.",
		}, []string{"code"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "secureheaders",
			Name:      "generation_duration_seconds",
			Help:      "Time spent resolving and rendering a header set.",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}, []string{"mode"}),
		cacheLookup: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "secureheaders",
			Name:      "cache_lookups_total",
			Help:      "Route header cache lookups, by result.",
		}, []string{"result"}),
		cacheServed: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "secureheaders",
			Name:      "cache_served_headers_total",
			Help:      "Headers emitted from cached route header sets.",
		}),
	}

	for _, collector := range []prometheus.Collector{c.generated, c.failures, c.duration, c.cacheLookup, c.cacheServed} {
		if err := reg.Register(collector); err != nil {
			return nil, err
		}
	}
	if gatherer, ok := reg.(prometheus.Gatherer); ok {
		c.gatherer = gatherer
	}
	return c, nil
}

// ObserveGenerated records a successful generation.
func (c *Collector) ObserveGenerated(mode string, elapsed time.Duration) {
	if c == nil {
		return
	}
	c.generated.WithLabelValues(mode).Inc()
	c.duration.WithLabelValues(mode).Observe(elapsed.Seconds())
}

// ObserveFailure records a failed generation.
func (c *Collector) ObserveFailure(code string) {
	if c == nil {
		return
	}
	c.failures.WithLabelValues(code).Inc()
}

// ObserveCache records a route cache lookup.
func (c *Collector) ObserveCache(hit bool) {
	if c == nil {
		return
	}
	result := "miss"
	if hit {
		result = "hit"
	}
	c.cacheLookup.WithLabelValues(result).Inc()
}

// ObserveCachedHeaders records headers served from a cache hit.
func (c *Collector) ObserveCachedHeaders(n int) {
	if c == nil || n <= 0 {
		return
	}
	c.cacheServed.Add(float64(n))
}

// Handler exposes the collector's registry in Prometheus text format.
func (c *Collector) Handler() http.Handler {
	if c == nil || c.gatherer == nil {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusServiceUnavailable)
		})
	}
	return promhttp.HandlerFor(c.gatherer, promhttp.HandlerOpts{})
}
