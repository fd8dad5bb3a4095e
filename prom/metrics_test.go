package prom

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/crashkit/delivery"
)

func TestMetricsRecord(t *testing.T) {
	registry := prometheus.NewRegistry()
	metrics := New(registry)

	metrics.AddDelivered(delivery.ResourceErrors, 3)
	metrics.AddRetried(delivery.ResourceErrors, 2)
	metrics.AddDropped(delivery.ResourceErrors, 1)
	metrics.AddTruncated(delivery.ResourceSessions, 4)
	metrics.SetPending(delivery.ResourceErrors, 7)
	metrics.ObserveAttemptDuration(delivery.ResourceErrors, 50*time.Millisecond)

	assert.Equal(t, 3.0, testutil.ToFloat64(metrics.delivered.WithLabelValues("errors")))
	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.retried.WithLabelValues("errors")))
	assert.Equal(t, 1.0, testutil.ToFloat64(metrics.dropped.WithLabelValues("errors")))
	assert.Equal(t, 4.0, testutil.ToFloat64(metrics.truncated.WithLabelValues("sessions")))
	assert.Equal(t, 7.0, testutil.ToFloat64(metrics.pending.WithLabelValues("errors")))

	count, err := testutil.GatherAndCount(registry)
	require.NoError(t, err)
	assert.Equal(t, 6, count, "every collector registers under its own name")
}

func TestSetPendingOverwrites(t *testing.T) {
	metrics := New(prometheus.NewRegistry())

	metrics.SetPending(delivery.ResourceErrors, 7)
	metrics.SetPending(delivery.ResourceErrors, 2)

	assert.Equal(t, 2.0, testutil.ToFloat64(metrics.pending.WithLabelValues("errors")))
}
