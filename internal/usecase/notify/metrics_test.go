package notify

import (
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
)

func TestRecordDispatch(t *testing.T) {
	before := testutil.ToFloat64(noticeDispatchedTotal)
	RecordDispatch()
	assert.Equal(t, before+1, testutil.ToFloat64(noticeDispatchedTotal))
}

func TestRecordSuccess(t *testing.T) {
	before := testutil.ToFloat64(noticeSentTotal.WithLabelValues("success"))
	RecordSuccess(120 * time.Millisecond)
	assert.Equal(t, before+1, testutil.ToFloat64(noticeSentTotal.WithLabelValues("success")))
}

func TestRecordFailure(t *testing.T) {
	reasons := []string{
		reasonClientError, reasonRateLimited, reasonServerError,
		reasonUnexpectedStatus, reasonTransport, reasonCircuitOpen, reasonPanic,
	}
	for _, reason := range reasons {
		t.Run(reason, func(t *testing.T) {
			failures := testutil.ToFloat64(noticeSentTotal.WithLabelValues("failure"))
			byReason := testutil.ToFloat64(noticeFailuresTotal.WithLabelValues(reason))

			RecordFailure(reason, time.Second)

			assert.Equal(t, failures+1, testutil.ToFloat64(noticeSentTotal.WithLabelValues("failure")))
			assert.Equal(t, byReason+1, testutil.ToFloat64(noticeFailuresTotal.WithLabelValues(reason)))
		})
	}
}

func TestActiveDeliveriesGauge(t *testing.T) {
	before := testutil.ToFloat64(activeDeliveries)
	incrementActiveDeliveries()
	assert.Equal(t, before+1, testutil.ToFloat64(activeDeliveries))
	decrementActiveDeliveries()
	assert.Equal(t, before, testutil.ToFloat64(activeDeliveries))
}
