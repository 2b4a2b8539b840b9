package notify

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

type quotaError struct{}

func (*quotaError) Error() string { return "quota exceeded" }

func TestExclusionFilter_Excluded(t *testing.T) {
	filter := NewExclusionFilter([]string{
		"*errors.errorString",
		"*errnotice/internal/usecase/notify.quotaError",
		"",
	})

	tests := []struct {
		name string
		err  error
		want bool
	}{
		{"exact stdlib type", errors.New("x"), true},
		{"exact custom type", &quotaError{}, true},
		{"wrapped excluded type is reported", fmt.Errorf("outer: %w", &quotaError{}), false},
		{"other type", errors.Join(errors.New("a")), false},
		{"nil error", nil, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, filter.Excluded(tt.err))
		})
	}
	assert.Equal(t, 2, filter.Len())
}

func TestExclusionFilter_Empty(t *testing.T) {
	assert.False(t, NewExclusionFilter(nil).Excluded(errors.New("x")))

	var nilFilter *ExclusionFilter
	assert.False(t, nilFilter.Excluded(errors.New("x")))
	assert.Equal(t, 0, nilFilter.Len())
}
