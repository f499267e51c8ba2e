// Package metrics exposes the Prometheus instrumentation for the
// logging pipeline itself: queue depth/utilization, records dropped by
// backpressure policy, and flush latency. Trimmed from this project's
// original enterprise metrics set (Kafka/sink/container gauges) down to
// the handful a single-queue, single-worker pipeline can actually
// produce.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	QueueDepth = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "logflow",
		Subsystem: "queue",
		Name:      "depth",
		Help:      "Number of messages currently buffered in the control/record queue.",
	})

	QueueUtilization = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "logflow",
		Subsystem: "queue",
		Name:      "utilization_ratio",
		Help:      "Queue depth divided by queue capacity, in [0,1].",
	})

	RecordsDroppedTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logflow",
			Subsystem: "queue",
			Name:      "records_dropped_total",
			Help:      "Records discarded by a backpressure policy instead of reaching a transport.",
		},
		[]string{"policy"},
	)

	FlushLatency = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "logflow",
		Name:      "flush_latency_seconds",
		Help:      "Time the worker spends processing one Flush message (buffer drain plus every transport's Flush).",
		Buckets:   prometheus.DefBuckets,
	})

	TransportErrorsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "logflow",
			Subsystem: "transport",
			Name:      "errors_total",
			Help:      "Transport Flush/Query calls that returned an error.",
		},
		[]string{"operation"},
	)

	QueueHealthLevel = promauto.NewGauge(prometheus.GaugeOpts{
		Namespace: "logflow",
		Subsystem: "queue",
		Name:      "health_level",
		Help:      "Current queue-health level as an ordinal: none=0, low=1, medium=2, high=3, critical=4.",
	})
)

// SetQueueDepth records the queue's current depth and capacity.
func SetQueueDepth(depth, capacity int) {
	QueueDepth.Set(float64(depth))
	if capacity > 0 {
		QueueUtilization.Set(float64(depth) / float64(capacity))
	}
}

// RecordDrop increments the drop counter for the given backpressure
// policy ("drop_oldest" or "drop_current"; "block" never drops).
func RecordDrop(policy string) {
	RecordsDroppedTotal.WithLabelValues(policy).Inc()
}

// ObserveFlushLatency records how long the worker took to process one
// Flush message; time the Flush caller spent queued behind earlier
// messages is not included.
func ObserveFlushLatency(d time.Duration) {
	FlushLatency.Observe(d.Seconds())
}

// RecordTransportError increments the transport error counter for the
// given operation ("flush" or "query").
func RecordTransportError(operation string) {
	TransportErrorsTotal.WithLabelValues(operation).Inc()
}

// SetQueueHealthLevel records the queue-health monitor's current level
// as an ordinal, suitable as a pkg/backpressure.Manager level-change
// callback.
func SetQueueHealthLevel(ordinal int) {
	QueueHealthLevel.Set(float64(ordinal))
}
