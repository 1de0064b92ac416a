package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector exposes Prometheus metrics for the analysis engine and the HTTP
// surface. A nil *Collector is a valid no-op, which keeps tests quiet.
type Collector struct {
	registry         *prometheus.Registry
	requestDuration  *prometheus.HistogramVec
	requestTotal     *prometheus.CounterVec
	cacheHits        prometheus.Counter
	cacheMisses      prometheus.Counter
	providerFailures prometheus.Counter
}

func NewCollector() (*Collector, error) {
	registry := prometheus.NewRegistry()

	requestDuration := prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "finflow",
		Subsystem: "http",
		Name:      "request_duration_seconds",
		Help:      "Latency distribution for inbound HTTP requests.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "path", "status"})

	requestTotal := prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: "finflow",
		Subsystem: "http",
		Name:      "requests_total",
		Help:      "Total number of inbound HTTP requests.",
	}, []string{"method", "path", "status"})

	cacheHits := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finflow",
		Subsystem: "engine",
		Name:      "analysis_cache_hits_total",
		Help:      "Analysis requests served from the parameter cache.",
	})

	cacheMisses := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finflow",
		Subsystem: "engine",
		Name:      "analysis_cache_misses_total",
		Help:      "Analysis requests that triggered a full derivation.",
	})

	providerFailures := prometheus.NewCounter(prometheus.CounterOpts{
		Namespace: "finflow",
		Subsystem: "engine",
		Name:      "provider_failures_total",
		Help:      "Market-data fetches that returned no usable data.",
	})

	for _, c := range []prometheus.Collector{
		requestDuration, requestTotal, cacheHits, cacheMisses, providerFailures,
	} {
		if err := registry.Register(c); err != nil {
			return nil, err
		}
	}

	return &Collector{
		registry:         registry,
		requestDuration:  requestDuration,
		requestTotal:     requestTotal,
		cacheHits:        cacheHits,
		cacheMisses:      cacheMisses,
		providerFailures: providerFailures,
	}, nil
}

// Handler returns an HTTP handler for exposing Prometheus metrics.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{})
}

func (c *Collector) ObserveRequest(method, path, status string, seconds float64) {
	if c == nil {
		return
	}
	c.requestTotal.WithLabelValues(method, path, status).Inc()
	c.requestDuration.WithLabelValues(method, path, status).Observe(seconds)
}

func (c *Collector) CacheHit() {
	if c == nil {
		return
	}
	c.cacheHits.Inc()
}

func (c *Collector) CacheMiss() {
	if c == nil {
		return
	}
	c.cacheMisses.Inc()
}

func (c *Collector) ProviderFailure() {
	if c == nil {
		return
	}
	c.providerFailures.Inc()
}
