package asynclog

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// EngineMetrics exports the logging engine's operational counters to a
// Prometheus registry. Grounded on Swind-go-task-runner's
// observability/prometheus/metrics_exporter.go: the registerCollector
// helper below is the same AlreadyRegisteredError-tolerant pattern so a
// shared registry can host both the engine's and the pool's metrics.
type EngineMetrics struct {
	droppedRecords prometheus.Counter
	rotations      prometheus.Counter
	exceptions     prometheus.Counter
	batchSize      prometheus.Histogram
}

// NewEngineMetrics registers the engine's collectors under namespace on
// reg. Where an equivalent collector is already registered, the
// registration error is ignored: the registry keeps the earlier
// collector, and this EngineMetrics's own collector is not exported. A
// nil reg disables export; callers get a usable-but-inert EngineMetrics.
func NewEngineMetrics(namespace string, reg prometheus.Registerer) *EngineMetrics {
	if namespace == "" {
		namespace = "asynclog"
	}

	m := &EngineMetrics{
		droppedRecords: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "dropped_records_total",
			Help:      "Records dropped because they were pushed after shutdown.",
		}),
		rotations: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "rotations_total",
			Help:      "File sink rotations performed.",
		}),
		exceptions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "exceptions_total",
			Help:      "Sink errors captured into the exception ledger.",
		}),
		batchSize: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "watcher_batch_size",
			Help:      "Record count per watcher-drained batch.",
			Buckets:   prometheus.ExponentialBuckets(1, 2, 10),
		}),
	}

	if reg != nil {
		registerCollector(reg, m.droppedRecords)
		registerCollector(reg, m.rotations)
		registerCollector(reg, m.exceptions)
		registerCollector(reg, m.batchSize)
	}
	return m
}

// registerCollector registers c on reg, tolerating a prior registration
// of an equivalent collector (the same pattern Swind-go-task-runner's
// exporter uses to make repeated construction idempotent).
func registerCollector[T prometheus.Collector](reg prometheus.Registerer, c T) {
	if err := reg.Register(c); err != nil {
		var already prometheus.AlreadyRegisteredError
		if errors.As(err, &already) {
			return
		}
	}
}
