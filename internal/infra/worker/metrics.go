package worker

import (
	"errnotice/internal/pkg/config"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// PoolMetrics provides Prometheus metrics for the delivery pool.
//
// Embedded metrics (from ConfigMetrics):
//   - errnotice_pool_config_load_timestamp
//   - errnotice_pool_config_validation_errors_total
//   - errnotice_pool_config_fallbacks_total
//   - errnotice_pool_config_fallback_active
//
// Pool metrics:
//   - errnotice_pool_tasks_total{result}: completed|dropped_saturated|dropped_shutdown|panicked
//   - errnotice_pool_active_tasks: tasks currently holding a slot
//   - errnotice_pool_queue_wait_seconds: time spent waiting for a slot
type PoolMetrics struct {
	*config.ConfigMetrics

	TasksTotal       *prometheus.CounterVec
	ActiveTasks      prometheus.Gauge
	QueueWaitSeconds prometheus.Histogram
}

// NewPoolMetrics creates metrics on the default registry. Call it once per process.
func NewPoolMetrics() *PoolMetrics {
	return NewPoolMetricsWith(prometheus.DefaultRegisterer)
}

// NewPoolMetricsWith registers the metrics with reg.
func NewPoolMetricsWith(reg prometheus.Registerer) *PoolMetrics {
	factory := promauto.With(reg)
	return &PoolMetrics{
		ConfigMetrics: config.NewConfigMetricsWith(factory, "errnotice_pool"),

		TasksTotal: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "errnotice_pool_tasks_total",
			Help: "Total number of submitted delivery tasks by result",
		}, []string{"result"}),

		ActiveTasks: factory.NewGauge(prometheus.GaugeOpts{
			Name: "errnotice_pool_active_tasks",
			Help: "Number of delivery tasks currently running",
		}),

		QueueWaitSeconds: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "errnotice_pool_queue_wait_seconds",
			Help:    "Time a task waited for a worker slot in seconds",
			Buckets: []float64{0.001, 0.01, 0.1, 0.5, 1, 5},
		}),
	}
}

// Task results.
const (
	resultCompleted        = "completed"
	resultDroppedSaturated = "dropped_saturated"
	resultDroppedShutdown  = "dropped_shutdown"
	resultPanicked         = "panicked"
)

func (m *PoolMetrics) recordResult(result string) {
	if m == nil {
		return
	}
	m.TasksTotal.WithLabelValues(result).Inc()
}

func (m *PoolMetrics) observeWait(seconds float64) {
	if m == nil {
		return
	}
	m.QueueWaitSeconds.Observe(seconds)
}

func (m *PoolMetrics) taskStarted() {
	if m == nil {
		return
	}
	m.ActiveTasks.Inc()
}

func (m *PoolMetrics) taskFinished() {
	if m == nil {
		return
	}
	m.ActiveTasks.Dec()
}
