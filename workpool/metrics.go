package workpool

import (
	"errors"

	"github.com/prometheus/client_golang/prometheus"
)

// PoolMetrics exports the pool's queued/outstanding/running counts as
// Prometheus gauges (P15), grounded on the snapshot-poller pattern in
// Swind-go-task-runner's observability/prometheus package.
type PoolMetrics struct {
	queued      prometheus.Gauge
	running     prometheus.Gauge
	outstanding prometheus.Gauge
}

// NewPoolMetrics builds and, if reg is non-nil, registers the pool's
// gauges under namespace (defaulting to "workpool").
func NewPoolMetrics(namespace string, reg prometheus.Registerer) *PoolMetrics {
	if namespace == "" {
		namespace = "workpool"
	}

	m := &PoolMetrics{
		queued: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "queued_tasks",
			Help:      "Tasks submitted but not yet handed to a worker.",
		}),
		running: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "running_tasks",
			Help:      "Tasks currently executing on a worker.",
		}),
		outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "outstanding_tasks",
			Help:      "Sum of queued and running tasks.",
		}),
	}

	if reg != nil {
		registerGauge(reg, m.queued)
		registerGauge(reg, m.running)
		registerGauge(reg, m.outstanding)
	}

	return m
}

func registerGauge(reg prometheus.Registerer, g prometheus.Gauge) {
	if err := reg.Register(g); err != nil {
		var already prometheus.AlreadyRegisteredError
		if !errors.As(err, &already) {
			panic(err)
		}
	}
}
