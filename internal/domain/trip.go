// Package domain contains the core data types for the JoliDay application.
// This package has no infrastructure dependencies and is imported by every
// other internal package (repo, service, handler).
package domain

import (
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Address is a postal address embedded in exactly one Trip or one Activity.
type Address struct {
	Country      string
	PostalCode   string
	City         string
	StreetName   string
	StreetNumber string
}

// Location renders the address the way calendar clients display it:
// street, number, postal code, city.
func (a Address) Location() string {
	return fmt.Sprintf("%s %s %s %s", a.StreetName, a.StreetNumber, a.PostalCode, a.City)
}

// Trip (a "holiday") is the top-level aggregate. Activities, messages,
// invites and member edges all belong to a trip.
//
// Owner is never part of Members: the owner's authority is implicit.
// StartDate and EndDate are calendar dates (midnight UTC), both inclusive.
type Trip struct {
	ID        uuid.UUID
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Address   Address
	Owner     User
	Members   []User

	// Chat messages are read through their own bounded window, not here.
	Activities   []Activity
	Transactions []Transaction

	CreatedAt time.Time
	UpdatedAt time.Time
}

// ActiveOn reports whether d falls within the trip's inclusive date range.
func (t Trip) ActiveOn(d time.Time) bool {
	d = DateOf(d)
	return !d.Before(t.StartDate) && !d.After(t.EndDate)
}

// Contains reports whether the range [start, end] nests inside the trip.
func (t Trip) Contains(start, end time.Time) bool {
	return !DateOf(start).Before(t.StartDate) && !DateOf(end).After(t.EndDate)
}

// FindActivity returns the trip's activity with the given id.
func (t Trip) FindActivity(id uuid.UUID) (Activity, bool) {
	for _, a := range t.Activities {
		if a.ID == id {
			return a, true
		}
	}
	return Activity{}, false
}

// Transaction is a shared expense attached to a trip. It is loaded with the
// trip but no operation creates or settles it.
type Transaction struct {
	ID          uuid.UUID
	TripID      uuid.UUID
	Name        string
	Description string
	AmountCents int64
	InvoiceURL  string
	Owner       User
	CreatedAt   time.Time
}
