package notifier

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNoOpDeliverer_Deliver(t *testing.T) {
	d := NewNoOpDeliverer()

	outcome, err := d.Deliver(context.Background(), testNotice())

	assert.NoError(t, err)
	assert.True(t, outcome.Success())
}

func TestParseRetryAfter(t *testing.T) {
	assert.Equal(t, time.Duration(0), parseRetryAfter(""))
	assert.Equal(t, time.Duration(0), parseRetryAfter("soon"))
	assert.Equal(t, time.Duration(0), parseRetryAfter("-3"))
	assert.Equal(t, 7*time.Second, parseRetryAfter("7"))
}

func TestTruncateBody(t *testing.T) {
	short := []byte("bad key")
	assert.Equal(t, "bad key", truncateBody(short))

	long := make([]byte, maxErrorBodyBytes+10)
	for i := range long {
		long[i] = 'x'
	}
	got := truncateBody(long)
	assert.Len(t, got, maxErrorBodyBytes+3)
}
