package delivery

import "time"

// Metrics captures delivery-level telemetry, labeled by resource type.
type Metrics interface {
	// ObserveAttemptDuration records the time spent on one transport attempt.
	ObserveAttemptDuration(resource ResourceType, duration time.Duration)
	// AddDelivered increments the count of successfully delivered payloads.
	AddDelivered(resource ResourceType, count int)
	// AddRetried increments the count of retryable delivery failures.
	AddRetried(resource ResourceType, count int)
	// AddDropped increments the count of permanently failed payloads.
	AddDropped(resource ResourceType, count int)
	// AddTruncated increments the count of payloads evicted by truncation.
	AddTruncated(resource ResourceType, count int)
	// SetPending updates the current pending payload count.
	SetPending(resource ResourceType, count int)
}

// NopMetrics is a no-op metrics recorder.
type NopMetrics struct{}

// ObserveAttemptDuration implements Metrics.
func (NopMetrics) ObserveAttemptDuration(ResourceType, time.Duration) {}

// AddDelivered implements Metrics.
func (NopMetrics) AddDelivered(ResourceType, int) {}

// AddRetried implements Metrics.
func (NopMetrics) AddRetried(ResourceType, int) {}

// AddDropped implements Metrics.
func (NopMetrics) AddDropped(ResourceType, int) {}

// AddTruncated implements Metrics.
func (NopMetrics) AddTruncated(ResourceType, int) {}

// SetPending implements Metrics.
func (NopMetrics) SetPending(ResourceType, int) {}
