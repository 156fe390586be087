package domain

import (
	"time"

	"github.com/google/uuid"
)

// Activity is a scheduled sub-event of a trip.
// Its date range must nest inside its trip's range.
type Activity struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Address     Address
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
