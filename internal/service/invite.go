package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/membership"
	"github.com/joliday/backend/internal/repo"
)

// InviteService drives the invitation workflow:
// pending (unread) → pending (read) → accepted | declined.
// Terminal states are not stored: handling an invite deletes it.
type InviteService struct {
	trips   repo.TripRepo
	users   repo.UserRepo
	invites repo.InviteRepo
}

// NewInviteService constructs an InviteService.
func NewInviteService(trips repo.TripRepo, users repo.UserRepo, invites repo.InviteRepo) *InviteService {
	return &InviteService{trips: trips, users: users, invites: invites}
}

// Create invites the user registered under email to a trip owned by caller.
// Returns domain.ErrNotFound if no user has that email and domain.ErrConflict
// for self, member, or duplicate invitations.
func (s *InviteService) Create(ctx context.Context, caller domain.User, tripID uuid.UUID, email string) (domain.Invite, error) {
	email = strings.TrimSpace(email)
	if email == "" {
		return domain.Invite{}, fmt.Errorf("%w: email is required", domain.ErrValidation)
	}

	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	if !membership.IsOwner(caller, trip) {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", domain.ErrForbidden)
	}

	target, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	switch {
	case target.ID == caller.ID:
		return domain.Invite{}, fmt.Errorf("%w: you cannot invite yourself", domain.ErrConflict)
	case membership.IsMember(target, trip):
		return domain.Invite{}, fmt.Errorf("%w: user is already a member", domain.ErrConflict)
	}

	exists, err := s.invites.Exists(ctx, trip.ID, target.ID)
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	if exists {
		return domain.Invite{}, errAlreadyInvited
	}

	inv, err := s.invites.Create(ctx, trip.ID, target.ID)
	if errors.Is(err, domain.ErrConflict) {
		// Lost a race with a concurrent invite for the same pair.
		return domain.Invite{}, errAlreadyInvited
	}
	if err != nil {
		return domain.Invite{}, fmt.Errorf("service.InviteService.Create: %w", err)
	}
	return inv, nil
}

var errAlreadyInvited = fmt.Errorf("%w: user has already been invited", domain.ErrConflict)

// MarkRead flags an invite addressed to caller as read. Idempotent.
func (s *InviteService) MarkRead(ctx context.Context, caller domain.User, inviteID uuid.UUID) error {
	inv, err := s.targetedInvite(ctx, caller, inviteID)
	if err != nil {
		return fmt.Errorf("service.InviteService.MarkRead: %w", err)
	}
	if inv.IsRead {
		return nil
	}
	if err := s.invites.MarkRead(ctx, inv.ID); err != nil {
		return fmt.Errorf("service.InviteService.MarkRead: %w", err)
	}
	return nil
}

// ListMine returns every invite addressed to caller.
func (s *InviteService) ListMine(ctx context.Context, caller domain.User) ([]domain.Invite, error) {
	invites, err := s.invites.ListForUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("service.InviteService.ListMine: %w", err)
	}
	if invites == nil {
		invites = []domain.Invite{}
	}
	return invites, nil
}

// Handle accepts or declines an invite addressed to caller. The invite is
// gone afterwards either way. On accept the reloaded trip, now listing caller
// as a member, is returned; on decline the trip is nil.
func (s *InviteService) Handle(ctx context.Context, caller domain.User, inviteID uuid.UUID, accept bool) (*domain.Trip, error) {
	inv, err := s.targetedInvite(ctx, caller, inviteID)
	if err != nil {
		return nil, fmt.Errorf("service.InviteService.Handle: %w", err)
	}

	if !accept {
		if err := s.invites.Delete(ctx, inv.ID); err != nil {
			return nil, fmt.Errorf("service.InviteService.Handle: %w", err)
		}
		return nil, nil
	}

	if err := s.invites.Accept(ctx, inv); err != nil {
		return nil, fmt.Errorf("service.InviteService.Handle: %w", err)
	}
	trip, err := s.trips.GetByID(ctx, inv.TripID)
	if err != nil {
		return nil, fmt.Errorf("service.InviteService.Handle: %w", err)
	}
	return &trip, nil
}

func (s *InviteService) targetedInvite(ctx context.Context, caller domain.User, inviteID uuid.UUID) (domain.Invite, error) {
	inv, err := s.invites.GetByID(ctx, inviteID)
	if err != nil {
		return domain.Invite{}, err
	}
	if inv.UserID != caller.ID {
		return domain.Invite{}, domain.ErrForbidden
	}
	return inv, nil
}
