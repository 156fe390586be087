package domain

import (
	"time"

	"github.com/google/uuid"
)

// MessageWindow is how many of the most recent chat messages a read returns.
const MessageWindow = 100

// Message is one chat line in a trip. Messages are append-only.
type Message struct {
	ID      uuid.UUID `json:"id"`
	TripID  uuid.UUID `json:"trip_id"`
	Content string    `json:"content"`
	Owner   User      `json:"owner"`
	SentAt  time.Time `json:"sent_at"`
}
