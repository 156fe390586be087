package repo_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joliday/backend/internal/domain"
)

func TestInviteRepo_Lifecycle(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner@example.com")
	guest := mustUser(t, s, "guest@example.com")
	trip := mustTrip(t, s, tripFixture(owner))

	inv, err := s.invites.Create(ctx, trip.ID, guest.ID)
	require.NoError(t, err)
	assert.Equal(t, "Beach", inv.TripName)
	assert.False(t, inv.IsRead)

	exists, err := s.invites.Exists(ctx, trip.ID, guest.ID)
	require.NoError(t, err)
	assert.True(t, exists)

	require.NoError(t, s.invites.MarkRead(ctx, inv.ID))
	list, err := s.invites.ListForUser(ctx, guest.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, list[0].IsRead)

	require.NoError(t, s.invites.Delete(ctx, inv.ID))
	list, err = s.invites.ListForUser(ctx, guest.ID)
	require.NoError(t, err)
	assert.Empty(t, list)
}

// The unique violation aborts the surrounding transaction, so nothing may
// follow the duplicate insert in this test.
func TestInviteRepo_Create_Duplicate(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner@example.com")
	guest := mustUser(t, s, "guest@example.com")
	trip := mustTrip(t, s, tripFixture(owner))

	_, err := s.invites.Create(ctx, trip.ID, guest.ID)
	require.NoError(t, err)

	_, err = s.invites.Create(ctx, trip.ID, guest.ID)
	assert.ErrorIs(t, err, domain.ErrConflict)
}

func TestInviteRepo_Accept(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner@example.com")
	guest := mustUser(t, s, "guest@example.com")
	trip := mustTrip(t, s, tripFixture(owner))

	inv, err := s.invites.Create(ctx, trip.ID, guest.ID)
	require.NoError(t, err)

	require.NoError(t, s.invites.Accept(ctx, inv))

	got, err := s.trips.GetByID(ctx, trip.ID)
	require.NoError(t, err)
	require.Len(t, got.Members, 1)
	assert.Equal(t, guest.ID, got.Members[0].ID)

	_, err = s.invites.GetByID(ctx, inv.ID)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	// A second accept finds no invite and leaves the membership intact.
	err = s.invites.Accept(ctx, inv)
	assert.ErrorIs(t, err, domain.ErrNotFound)
}
