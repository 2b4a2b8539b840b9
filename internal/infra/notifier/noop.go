package notifier

import (
	"context"

	"errnotice/internal/domain/entity"
)

// NoOpDeliverer discards notices. It is used when reporting is disabled so
// callers need no nil checks.
type NoOpDeliverer struct{}

// NewNoOpDeliverer creates a new NoOpDeliverer instance.
func NewNoOpDeliverer() *NoOpDeliverer {
	return &NoOpDeliverer{}
}

// Deliver reports success without sending anything.
func (n *NoOpDeliverer) Deliver(ctx context.Context, notice *entity.Notice) (Outcome, error) {
	return Outcome{StatusCode: 204}, nil
}
