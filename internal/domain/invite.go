package domain

import (
	"time"

	"github.com/google/uuid"
)

// Invite is a pending proposal for a user to join a trip.
// There is no accepted/declined state: handling an invite deletes it, and
// acceptance leaves a membership edge behind.
type Invite struct {
	ID       uuid.UUID
	TripID   uuid.UUID
	TripName string
	UserID   uuid.UUID
	IsRead   bool

	CreatedAt time.Time
}
