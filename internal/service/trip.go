// Package service contains the business logic for the JoliDay API.
// Services validate inputs, enforce membership rules, and orchestrate repo calls.
// No SQL lives here: services depend on repo interfaces, not implementations.
package service

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/membership"
	"github.com/joliday/backend/internal/repo"
)

// TripInput carries the editable fields of a trip.
type TripInput struct {
	Name      string
	StartDate time.Time
	EndDate   time.Time
	Address   domain.Address
}

// TripService implements business logic for Trip operations.
type TripService struct {
	trips repo.TripRepo
	clock Clock
}

// NewTripService constructs a TripService backed by the provided TripRepo.
func NewTripService(trips repo.TripRepo, clock Clock) *TripService {
	return &TripService{trips: trips, clock: clock}
}

// Create validates and persists a new trip owned by caller.
// A new trip may not start before today.
func (s *TripService) Create(ctx context.Context, caller domain.User, in TripInput) (domain.Trip, error) {
	trip, err := validateTrip(in)
	if err != nil {
		return domain.Trip{}, err
	}
	if trip.StartDate.Before(domain.DateOf(s.clock())) {
		return domain.Trip{}, fmt.Errorf("%w: start date must not be in the past", domain.ErrValidation)
	}

	trip.Owner = caller
	result, err := s.trips.Create(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Create: %w", err)
	}
	return result, nil
}

// Get returns the full trip aggregate if caller is its owner or a member.
func (s *TripService) Get(ctx context.Context, caller domain.User, id uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", err)
	}
	if !membership.IsAuthorized(caller, trip) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Get: %w", domain.ErrForbidden)
	}
	return trip, nil
}

// ListMine returns the trips caller owns or belongs to, by start date.
// Always returns a non-nil slice so callers can safely range over it.
func (s *TripService) ListMine(ctx context.Context, caller domain.User) ([]domain.Trip, error) {
	trips, err := s.trips.ListForUser(ctx, caller.ID)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListMine: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// ListAll returns every trip. Access is restricted to admins at the route.
func (s *TripService) ListAll(ctx context.Context) ([]domain.Trip, error) {
	trips, err := s.trips.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("service.TripService.ListAll: %w", err)
	}
	if trips == nil {
		trips = []domain.Trip{}
	}
	return trips, nil
}

// Edit replaces name, dates and address of a trip owned by caller.
//
// The start may move earlier only as long as it does not land before today;
// moving it later, or keeping an already elapsed start, is always allowed.
func (s *TripService) Edit(ctx context.Context, caller domain.User, id uuid.UUID, in TripInput) (domain.Trip, error) {
	update, err := validateTrip(in)
	if err != nil {
		return domain.Trip{}, err
	}

	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Edit: %w", err)
	}
	if !membership.IsOwner(caller, trip) {
		return domain.Trip{}, fmt.Errorf("service.TripService.Edit: %w", domain.ErrForbidden)
	}

	today := domain.DateOf(s.clock())
	if update.StartDate.Before(trip.StartDate) && update.StartDate.Before(today) {
		return domain.Trip{}, fmt.Errorf("%w: cannot move a trip to start in the past", domain.ErrConflict)
	}

	trip.Name = update.Name
	trip.StartDate = update.StartDate
	trip.EndDate = update.EndDate
	trip.Address = update.Address

	result, err := s.trips.Update(ctx, trip)
	if err != nil {
		return domain.Trip{}, fmt.Errorf("service.TripService.Edit: %w", err)
	}
	return result, nil
}

// Delete removes a trip owned by caller along with everything under it.
func (s *TripService) Delete(ctx context.Context, caller domain.User, id uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	if !membership.IsOwner(caller, trip) {
		return fmt.Errorf("service.TripService.Delete: %w", domain.ErrForbidden)
	}
	if err := s.trips.Delete(ctx, id); err != nil {
		return fmt.Errorf("service.TripService.Delete: %w", err)
	}
	return nil
}

// RemoveMember drops userID from the members of a trip owned by caller.
func (s *TripService) RemoveMember(ctx context.Context, caller domain.User, tripID, userID uuid.UUID) error {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return fmt.Errorf("service.TripService.RemoveMember: %w", err)
	}
	if !membership.IsOwner(caller, trip) {
		return fmt.Errorf("service.TripService.RemoveMember: %w", domain.ErrForbidden)
	}
	if !membership.IsMember(domain.User{ID: userID}, trip) {
		return fmt.Errorf("service.TripService.RemoveMember: %w", domain.ErrNotFound)
	}
	if err := s.trips.RemoveMember(ctx, tripID, userID); err != nil {
		return fmt.Errorf("service.TripService.RemoveMember: %w", err)
	}
	return nil
}

// Statistics counts distinct travellers per country among trips running on date.
func (s *TripService) Statistics(ctx context.Context, date time.Time) ([]domain.CountryCount, error) {
	trips, err := s.trips.ListActiveOn(ctx, domain.DateOf(date))
	if err != nil {
		return nil, fmt.Errorf("service.TripService.Statistics: %w", err)
	}
	return domain.TravelersPerCountry(trips), nil
}

// validateTrip enforces the field rules shared by Create and Edit.
func validateTrip(in TripInput) (domain.Trip, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return domain.Trip{}, err
	}
	start, end, err := validateRange(in.StartDate, in.EndDate)
	if err != nil {
		return domain.Trip{}, err
	}
	addr, err := validateAddress(in.Address)
	if err != nil {
		return domain.Trip{}, err
	}
	return domain.Trip{Name: name, StartDate: start, EndDate: end, Address: addr}, nil
}
