package repo_test

import (
	"context"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joliday/backend/internal/domain"
)

func TestMessageRepo_Create(t *testing.T) {
	s := newStore(t)
	owner := mustUser(t, s, "owner@example.com")
	trip := mustTrip(t, s, tripFixture(owner))

	// Only the owner id is known to the caller.
	got, err := s.messages.Create(context.Background(), domain.Message{TripID: trip.ID, Owner: domain.User{ID: owner.ID}, Content: "hello"})
	require.NoError(t, err)
	assert.NotEqual(t, [16]byte{}, got.ID)
	assert.False(t, got.SentAt.IsZero())
	assert.Equal(t, owner.ID, got.Owner.ID)
	assert.Equal(t, owner.Email, got.Owner.Email)
	assert.Equal(t, owner.Name, got.Owner.Name)
}

func TestMessageRepo_ListRecent_Window(t *testing.T) {
	s := newStore(t)
	ctx := context.Background()
	owner := mustUser(t, s, "owner@example.com")
	trip := mustTrip(t, s, tripFixture(owner))

	for i := 0; i < 150; i++ {
		_, err := s.messages.Create(ctx, domain.Message{TripID: trip.ID, Owner: owner, Content: fmt.Sprintf("m%03d", i)})
		require.NoError(t, err)
	}

	got, err := s.messages.ListRecent(ctx, trip.ID, domain.MessageWindow)
	require.NoError(t, err)
	require.Len(t, got, domain.MessageWindow)
	assert.Equal(t, "m050", got[0].Content, "oldest message in the window")
	assert.Equal(t, "m149", got[len(got)-1].Content)
	assert.Equal(t, owner.Email, got[0].Owner.Email)
}

func TestMessageRepo_ListRecent_Empty(t *testing.T) {
	s := newStore(t)
	owner := mustUser(t, s, "owner@example.com")
	trip := mustTrip(t, s, tripFixture(owner))

	got, err := s.messages.ListRecent(context.Background(), trip.ID, domain.MessageWindow)
	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}
