// Package metrics exposes Prometheus instrumentation for the webhook relay.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Attempt outcomes and request results used as label values.
const (
	OutcomeDelivered = "delivered"
	OutcomeFailed    = "failed"

	ResultDelivered = "delivered"
	ResultFallback  = "fallback"
	ResultRejected  = "rejected"
	ResultError     = "error"
)

// Relay tracks the externally observable behavior of the relay pipeline:
// per-endpoint delivery attempts, per-request outcomes and fallback usage.
type Relay struct {
	registry *prometheus.Registry

	attemptsTotal   *prometheus.CounterVec
	requestsTotal   *prometheus.CounterVec
	fallbackTotal   prometheus.Counter
	attemptDuration prometheus.Histogram
	endpoints       prometheus.Gauge
}

// NewRelay creates and registers relay metrics on a private registry.
func NewRelay() *Relay {
	m := &Relay{
		registry: prometheus.NewRegistry(),

		attemptsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aigents",
				Subsystem: "relay",
				Name:      "attempts_total",
				Help:      "Outbound webhook delivery attempts by outcome",
			},
			[]string{"outcome"},
		),

		requestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "aigents",
				Subsystem: "relay",
				Name:      "requests_total",
				Help:      "Client relay requests by final result",
			},
			[]string{"result"},
		),

		fallbackTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: "aigents",
				Subsystem: "relay",
				Name:      "fallback_total",
				Help:      "Requests answered by the canned fallback responder",
			},
		),

		attemptDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: "aigents",
				Subsystem: "relay",
				Name:      "attempt_duration_seconds",
				Help:      "Duration of individual webhook delivery attempts",
				Buckets:   prometheus.DefBuckets,
			},
		),

		endpoints: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: "aigents",
				Subsystem: "relay",
				Name:      "endpoints",
				Help:      "Number of registered webhook endpoints",
			},
		),
	}

	m.registry.MustRegister(
		m.attemptsTotal,
		m.requestsTotal,
		m.fallbackTotal,
		m.attemptDuration,
		m.endpoints,
	)

	return m
}

// ObserveAttempt records one outbound delivery attempt.
func (m *Relay) ObserveAttempt(outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.attemptsTotal.WithLabelValues(outcome).Inc()
	m.attemptDuration.Observe(d.Seconds())
}

// RecordRequest records the final result of one client request.
func (m *Relay) RecordRequest(result string) {
	if m == nil {
		return
	}
	m.requestsTotal.WithLabelValues(result).Inc()
	if result == ResultFallback {
		m.fallbackTotal.Inc()
	}
}

// SetEndpoints updates the registered-endpoint gauge.
func (m *Relay) SetEndpoints(n int) {
	if m == nil {
		return
	}
	m.endpoints.Set(float64(n))
}

// Handler returns the Prometheus exposition handler for this registry.
func (m *Relay) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{
		ErrorHandling: promhttp.ContinueOnError,
	})
}
