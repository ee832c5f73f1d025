// Package metrics exposes Prometheus instrumentation for gateway calls, HTTP
// requests, browser sessions and synthesized speech.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "kazitrust"

// Metrics holds every collector kazitrust records. Each instance owns its
// registry so tests and multiple servers in one process do not collide.
type Metrics struct {
	registry *prometheus.Registry

	// Gateway metrics
	GatewayCalls    *prometheus.CounterVec
	GatewayDuration *prometheus.HistogramVec
	SpeechBytes     prometheus.Histogram

	// HTTP metrics
	HTTPRequests        *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	ActiveSessions prometheus.Gauge
}

// New creates and registers all collectors on a fresh registry, including the
// Go runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	factory := promauto.With(reg)

	return &Metrics{
		registry: reg,

		GatewayCalls: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "gateway_calls_total",
			Help:      "Total number of model gateway calls by operation and outcome",
		}, []string{"operation", "outcome"}),
		GatewayDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "gateway_call_duration_seconds",
			Help:      "Duration of model gateway calls",
			Buckets:   prometheus.ExponentialBuckets(0.25, 2, 10), // 250ms to ~2 minutes
		}, []string{"operation"}),
		SpeechBytes: factory.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "speech_pcm_bytes",
			Help:      "Size of synthesized PCM payloads",
			Buckets:   prometheus.ExponentialBuckets(16*1024, 2, 10), // 16KB to ~8MB
		}),

		HTTPRequests: factory.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "Total number of HTTP requests",
		}, []string{"method", "route", "status_code"}),
		HTTPRequestDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "Duration of HTTP requests",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),

		ActiveSessions: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "active_sessions",
			Help:      "Current number of browser sessions held in memory",
		}),
	}
}

// ObserveGatewayCall records one model gateway call.
func (m *Metrics) ObserveGatewayCall(operation, outcome string, elapsed time.Duration) {
	m.GatewayCalls.WithLabelValues(operation, outcome).Inc()
	m.GatewayDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// ObserveSpeech records the size of a synthesized PCM payload.
func (m *Metrics) ObserveSpeech(pcmBytes int) {
	m.SpeechBytes.Observe(float64(pcmBytes))
}

// ObserveHTTPRequest records a served HTTP request.
func (m *Metrics) ObserveHTTPRequest(method, route, statusCode string, elapsed time.Duration) {
	m.HTTPRequests.WithLabelValues(method, route, statusCode).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// SetActiveSessions sets the current number of browser sessions.
func (m *Metrics) SetActiveSessions(count int) {
	m.ActiveSessions.Set(float64(count))
}

// Registry returns the registry the collectors are registered on.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
