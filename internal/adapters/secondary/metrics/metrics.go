// Package metrics exposes registry activity to Prometheus.
package metrics

import (
	"net/http"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"vessel-registry/internal/core/ports/output"
)

// RequestMetrics captures HTTP request metrics.
type RequestMetrics interface {
	ObserveRequest(method, route, status string, elapsed time.Duration)
}

// Noop implements both metric interfaces without emitting anything.
type Noop struct {
	ports.NoopMetrics
}

func (Noop) ObserveRequest(string, string, string, time.Duration) {}

// Prom implements ports.RegistrationMetrics and RequestMetrics with
// Prometheus collectors.
type Prom struct {
	registrations   *prometheus.CounterVec
	ingestedBytes   prometheus.Counter
	registerLatency *prometheus.HistogramVec
	requests        *prometheus.CounterVec
	requestLatency  *prometheus.HistogramVec
	once            sync.Once
}

var (
	_ ports.RegistrationMetrics = (*Prom)(nil)
	_ RequestMetrics            = (*Prom)(nil)
)

// NewProm builds the collectors and registers them with reg, or with the
// default registerer when reg is nil.
func NewProm(namespace string, reg prometheus.Registerer) *Prom {
	p := &Prom{
		registrations: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "version_registrations_total",
			Help:      "Version registrations by outcome",
		}, []string{"outcome"}),
		ingestedBytes: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "ingested_bytes_total",
			Help:      "Bytes streamed through the ingest pipeline",
		}),
		registerLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "version_registration_duration_seconds",
			Help:      "Version registration latency by outcome",
			Buckets:   prometheus.ExponentialBuckets(0.005, 4, 9),
		}, []string{"outcome"}),
		requests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "http_requests_total",
			Help:      "HTTP requests by method/route/status",
		}, []string{"method", "route", "status"}),
		requestLatency: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method/route",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
	}
	if reg == nil {
		reg = prometheus.DefaultRegisterer
	}
	p.register(reg)
	return p
}

func (p *Prom) register(reg prometheus.Registerer) {
	p.once.Do(func() {
		reg.MustRegister(p.registrations, p.ingestedBytes, p.registerLatency, p.requests, p.requestLatency)
	})
}

func (p *Prom) ObserveRegistration(outcome string, ingestedBytes int64, elapsed time.Duration) {
	p.registrations.WithLabelValues(outcome).Inc()
	if ingestedBytes > 0 {
		p.ingestedBytes.Add(float64(ingestedBytes))
	}
	p.registerLatency.WithLabelValues(outcome).Observe(elapsed.Seconds())
}

func (p *Prom) ObserveRequest(method, route, status string, elapsed time.Duration) {
	p.requests.WithLabelValues(method, route, status).Inc()
	p.requestLatency.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

// Handler returns an HTTP handler for /metrics served from g, or from the
// default gatherer when g is nil.
func Handler(g prometheus.Gatherer) http.Handler {
	if g == nil {
		return promhttp.Handler()
	}
	return promhttp.HandlerFor(g, promhttp.HandlerOpts{})
}
