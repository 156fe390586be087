package repo_test

import (
	"context"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/stretchr/testify/require"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/repo"
	"github.com/joliday/backend/testutil"
)

// store bundles every repo on one rolled-back transaction.
type store struct {
	tx         pgx.Tx
	users      repo.UserRepo
	trips      repo.TripRepo
	activities repo.ActivityRepo
	invites    repo.InviteRepo
	messages   repo.MessageRepo
}

func newStore(t *testing.T) store {
	t.Helper()
	tx := testutil.NewTx(t)
	testutil.SeedRoles(t, tx)
	return store{
		tx:         tx,
		users:      repo.NewUserRepo(tx),
		trips:      repo.NewTripRepo(tx),
		activities: repo.NewActivityRepo(tx),
		invites:    repo.NewInviteRepo(tx),
		messages:   repo.NewMessageRepo(tx),
	}
}

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func mustUser(t *testing.T, s store, email string) domain.User {
	t.Helper()
	u, err := s.users.Create(context.Background(), domain.User{
		Email:     email,
		Name:      "Tester",
		FirstName: "Test",
		AvatarURL: domain.DefaultAvatarURL,
		Role:      domain.RoleVacationer,
	})
	require.NoError(t, err)
	return u
}

// tripFixture returns a domain.Trip with sensible defaults for use in tests.
// Callers can override individual fields after calling this function.
func tripFixture(owner domain.User) domain.Trip {
	return domain.Trip{
		Name:      "Beach",
		StartDate: date(2025, 7, 1),
		EndDate:   date(2025, 7, 10),
		Address: domain.Address{
			Country:      "France",
			PostalCode:   "06000",
			City:         "Nice",
			StreetName:   "Promenade des Anglais",
			StreetNumber: "1",
		},
		Owner: owner,
	}
}

func mustTrip(t *testing.T, s store, trip domain.Trip) domain.Trip {
	t.Helper()
	got, err := s.trips.Create(context.Background(), trip)
	require.NoError(t, err)
	return got
}
