// Package prom implements delivery.Metrics on top of Prometheus collectors.
package prom

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/crashkit/delivery"
)

const resourceLabel = "resource"

// Metrics records delivery telemetry in Prometheus collectors registered on
// the provided registerer.
type Metrics struct {
	delivered       *prometheus.CounterVec
	retried         *prometheus.CounterVec
	dropped         *prometheus.CounterVec
	truncated       *prometheus.CounterVec
	pending         *prometheus.GaugeVec
	attemptDuration *prometheus.HistogramVec
}

var _ delivery.Metrics = (*Metrics)(nil)

// New registers the delivery collectors on reg and returns the recorder.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		delivered: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_payloads_delivered_total",
			Help: "Total number of payloads delivered to the collector",
		}, []string{resourceLabel}),
		retried: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_payload_retries_total",
			Help: "Total number of retryable delivery failures",
		}, []string{resourceLabel}),
		dropped: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_payloads_dropped_total",
			Help: "Total number of payloads dropped after permanent failures",
		}, []string{resourceLabel}),
		truncated: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "delivery_payloads_truncated_total",
			Help: "Total number of payloads evicted by capacity truncation",
		}, []string{resourceLabel}),
		pending: factory.NewGaugeVec(prometheus.GaugeOpts{
			Name: "delivery_payloads_pending",
			Help: "Current number of pending payloads",
		}, []string{resourceLabel}),
		attemptDuration: factory.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "delivery_attempt_duration_seconds",
			Help:    "Duration of individual transport attempts in seconds",
			Buckets: prometheus.DefBuckets,
		}, []string{resourceLabel}),
	}
}

// ObserveAttemptDuration implements delivery.Metrics.
func (m *Metrics) ObserveAttemptDuration(resource delivery.ResourceType, duration time.Duration) {
	m.attemptDuration.WithLabelValues(string(resource)).Observe(duration.Seconds())
}

// AddDelivered implements delivery.Metrics.
func (m *Metrics) AddDelivered(resource delivery.ResourceType, count int) {
	m.delivered.WithLabelValues(string(resource)).Add(float64(count))
}

// AddRetried implements delivery.Metrics.
func (m *Metrics) AddRetried(resource delivery.ResourceType, count int) {
	m.retried.WithLabelValues(string(resource)).Add(float64(count))
}

// AddDropped implements delivery.Metrics.
func (m *Metrics) AddDropped(resource delivery.ResourceType, count int) {
	m.dropped.WithLabelValues(string(resource)).Add(float64(count))
}

// AddTruncated implements delivery.Metrics.
func (m *Metrics) AddTruncated(resource delivery.ResourceType, count int) {
	m.truncated.WithLabelValues(string(resource)).Add(float64(count))
}

// SetPending implements delivery.Metrics.
func (m *Metrics) SetPending(resource delivery.ResourceType, count int) {
	m.pending.WithLabelValues(string(resource)).Set(float64(count))
}
