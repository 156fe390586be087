package service_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/service"
)

// today is the fixed "now" every service under test sees.
var today = date(2025, 6, 20)

func fixedClock() time.Time { return today.Add(14 * time.Hour) }

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func address() domain.Address {
	return domain.Address{
		Country:      "France",
		PostalCode:   "06000",
		City:         "Nice",
		StreetName:   "Promenade des Anglais",
		StreetNumber: "1",
	}
}

func tripInput() service.TripInput {
	return service.TripInput{
		Name:      "Beach",
		StartDate: date(2025, 7, 1),
		EndDate:   date(2025, 7, 10),
		Address:   address(),
	}
}

func activityInput(start, end time.Time) service.ActivityInput {
	return service.ActivityInput{
		Name:        "Snorkeling",
		Description: "Reef tour",
		StartDate:   start,
		EndDate:     end,
		Address:     address(),
	}
}

func mustUser(t *testing.T, s *memStore, email string) domain.User {
	t.Helper()
	u, err := s.Users().Create(context.Background(), domain.User{Email: email, Role: domain.RoleVacationer})
	require.NoError(t, err)
	return u
}

// putTrip stores a trip directly, bypassing the "not in the past" creation rule.
func putTrip(t *testing.T, s *memStore, owner domain.User, in service.TripInput) domain.Trip {
	t.Helper()
	trip, err := s.Trips().Create(context.Background(), domain.Trip{
		Name:      in.Name,
		StartDate: in.StartDate,
		EndDate:   in.EndDate,
		Address:   in.Address,
		Owner:     owner,
	})
	require.NoError(t, err)
	return trip
}
