package notifications

import (
	"time"

	"github.com/google/uuid"
)

// Message is one notification in flight. Delivered records the sinks that already
// accepted it so a retry only goes to the sinks that failed.
type Message struct {
	ID         uuid.UUID              `json:"id"`
	UserID     uuid.UUID              `json:"user_id"`
	Kind       string                 `json:"kind"`
	Payload    map[string]interface{} `json:"payload"`
	Attempts   int                    `json:"attempts"`
	Delivered  []string               `json:"delivered,omitempty"`
	LastError  string                 `json:"last_error,omitempty"`
	EnqueuedAt time.Time              `json:"enqueued_at"`
}

func (m *Message) deliveredTo(sink string) bool {
	for _, s := range m.Delivered {
		if s == sink {
			return true
		}
	}
	return false
}
