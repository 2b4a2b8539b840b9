package notify

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for notice delivery. Excluded errors are never counted.
var (
	// noticeDispatchedTotal counts notices handed to the executor
	noticeDispatchedTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "errnotice_notices_dispatched_total",
			Help: "Total number of notices handed to the delivery executor",
		},
	)

	// noticeSentTotal counts delivery outcomes
	noticeSentTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errnotice_notices_sent_total",
			Help: "Total number of notice deliveries by status",
		},
		[]string{"status"}, // status: success|failure
	)

	// noticeFailuresTotal breaks failures down by cause
	noticeFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "errnotice_notice_failures_total",
			Help: "Total number of failed notice deliveries by reason",
		},
		[]string{"reason"}, // reason: client_error|rate_limited|server_error|unexpected_status|transport|circuit_open|panic
	)

	// noticeDuration tracks delivery latency
	noticeDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "errnotice_notice_delivery_duration_seconds",
			Help:    "Notice delivery duration in seconds",
			Buckets: []float64{0.05, 0.1, 0.5, 1, 5, 10, 20},
		},
	)

	// activeDeliveries tracks deliveries currently running
	activeDeliveries = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "errnotice_active_deliveries",
			Help: "Number of notice deliveries currently running",
		},
	)
)

// Failure reasons.
const (
	reasonClientError      = "client_error"
	reasonRateLimited      = "rate_limited"
	reasonServerError      = "server_error"
	reasonUnexpectedStatus = "unexpected_status"
	reasonTransport        = "transport"
	reasonCircuitOpen      = "circuit_open"
	reasonPanic            = "panic"
)

// RecordDispatch records a notice handed to the executor.
func RecordDispatch() {
	noticeDispatchedTotal.Inc()
}

// RecordSuccess records an accepted notice.
func RecordSuccess(duration time.Duration) {
	noticeSentTotal.WithLabelValues("success").Inc()
	noticeDuration.Observe(duration.Seconds())
}

// RecordFailure records a failed delivery for reason.
func RecordFailure(reason string, duration time.Duration) {
	noticeSentTotal.WithLabelValues("failure").Inc()
	noticeFailuresTotal.WithLabelValues(reason).Inc()
	if duration > 0 {
		noticeDuration.Observe(duration.Seconds())
	}
}

func incrementActiveDeliveries() { activeDeliveries.Inc() }

func decrementActiveDeliveries() { activeDeliveries.Dec() }
