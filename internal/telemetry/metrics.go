// Package telemetry provides observability primitives shared by the HTTP
// facade, gateway session, and event cache.
package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Metrics holds all Prometheus collectors the client exposes, for
// applications that want to scrape them alongside their own.
type Metrics struct {
	RequestsTotal    *prometheus.CounterVec // method, path, status
	RequestDuration  *prometheus.HistogramVec
	RateLimitRejects *prometheus.CounterVec // family
	CacheHits        *prometheus.CounterVec // entity
	CacheMisses      *prometheus.CounterVec // entity

	GatewayReconnectsTotal prometheus.Counter
	GatewayConnected       prometheus.Gauge
	EventsProcessedTotal   *prometheus.CounterVec // kind

	CircuitBreakerState   *prometheus.GaugeVec   // host (0=closed, 1=open, 2=half_open)
	CircuitBreakerRejects *prometheus.CounterVec // host
}

// NewMetrics creates and registers all collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		RequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "requests_total",
			Help:      "Total number of HTTP facade requests.",
		}, []string{"method", "path", "status"}),

		RequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace:                       "stoatgo",
			Name:                            "request_duration_seconds",
			Help:                            "HTTP facade request duration in seconds.",
			NativeHistogramBucketFactor:     1.1,
			NativeHistogramMaxBucketNumber:  100,
			NativeHistogramMinResetDuration: 0,
		}, []string{"method", "path"}),

		RateLimitRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "ratelimit_rejects_total",
			Help:      "Total local governor rejections, by bucket family.",
		}, []string{"family"}),

		CacheHits: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "cache_hits_total",
			Help:      "Total fetch-through cache hits, by entity kind.",
		}, []string{"entity"}),

		CacheMisses: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "cache_misses_total",
			Help:      "Total fetch-through cache misses, by entity kind.",
		}, []string{"entity"}),

		GatewayReconnectsTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "gateway_reconnects_total",
			Help:      "Total gateway reconnect attempts.",
		}),

		GatewayConnected: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: "stoatgo",
			Name:      "gateway_connected",
			Help:      "1 if the gateway session currently holds a live connection.",
		}),

		EventsProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "events_processed_total",
			Help:      "Total gateway events dispatched, by event kind.",
		}, []string{"kind"}),

		CircuitBreakerState: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: "stoatgo",
			Name:      "circuit_breaker_state",
			Help:      "Circuit breaker state per host (0=closed, 1=open, 2=half_open).",
		}, []string{"host"}),

		CircuitBreakerRejects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: "stoatgo",
			Name:      "circuit_breaker_rejects_total",
			Help:      "Total requests rejected by an open circuit breaker, by host.",
		}, []string{"host"}),
	}

	reg.MustRegister(
		m.RequestsTotal,
		m.RequestDuration,
		m.RateLimitRejects,
		m.CacheHits,
		m.CacheMisses,
		m.GatewayReconnectsTotal,
		m.GatewayConnected,
		m.EventsProcessedTotal,
		m.CircuitBreakerState,
		m.CircuitBreakerRejects,
	)

	return m
}
