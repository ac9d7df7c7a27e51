package notifications

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Dispatcher hands notifications to the queue and returns. Delivery happens in the Worker.
type Dispatcher struct {
	Queue Queue
	Now   func() time.Time
}

func (d *Dispatcher) Notify(ctx context.Context, userID uuid.UUID, kind string, payload map[string]interface{}) error {
	now := time.Now
	if d.Now != nil {
		now = d.Now
	}
	return d.Queue.Enqueue(ctx, Message{
		ID:         uuid.New(),
		UserID:     userID,
		Kind:       kind,
		Payload:    payload,
		EnqueuedAt: now().UTC(),
	})
}
