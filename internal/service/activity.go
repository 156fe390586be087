package service

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/internal/membership"
	"github.com/joliday/backend/internal/repo"
)

// CalendarSerializer renders calendar events as a calendar document.
type CalendarSerializer interface {
	Serialize(events []domain.CalendarEvent) ([]byte, error)
}

// ActivityInput carries the editable fields of an activity.
type ActivityInput struct {
	Name        string
	Description string
	StartDate   time.Time
	EndDate     time.Time
	Address     domain.Address
}

// ActivityService implements business logic for activities scheduled inside a trip.
// Every operation requires the caller to be the trip's owner or a member.
type ActivityService struct {
	trips      repo.TripRepo
	activities repo.ActivityRepo
	calendar   CalendarSerializer
}

// NewActivityService constructs an ActivityService.
func NewActivityService(trips repo.TripRepo, activities repo.ActivityRepo, calendar CalendarSerializer) *ActivityService {
	return &ActivityService{trips: trips, activities: activities, calendar: calendar}
}

// List returns the activities of a trip ordered by start date.
func (s *ActivityService) List(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]domain.Activity, error) {
	trip, err := s.authorizedTrip(ctx, caller, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.List: %w", err)
	}
	if trip.Activities == nil {
		return []domain.Activity{}, nil
	}
	return trip.Activities, nil
}

// Get returns a single activity of a trip.
// Returns domain.ErrNotFound if the activity is not part of that trip.
func (s *ActivityService) Get(ctx context.Context, caller domain.User, tripID, activityID uuid.UUID) (domain.Activity, error) {
	trip, err := s.authorizedTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Get: %w", err)
	}
	a, ok := trip.FindActivity(activityID)
	if !ok {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Get: %w", domain.ErrNotFound)
	}
	return a, nil
}

// Create validates and adds an activity whose dates nest inside the trip.
func (s *ActivityService) Create(ctx context.Context, caller domain.User, tripID uuid.UUID, in ActivityInput) (domain.Activity, error) {
	activity, err := validateActivity(in)
	if err != nil {
		return domain.Activity{}, err
	}

	trip, err := s.authorizedTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	if !trip.Contains(activity.StartDate, activity.EndDate) {
		return domain.Activity{}, errOutsideTrip
	}

	activity.TripID = trip.ID
	result, err := s.activities.Create(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Create: %w", err)
	}
	return result, nil
}

// Edit replaces the fields of an existing activity. The new dates are checked
// against the trip's current bounds.
func (s *ActivityService) Edit(ctx context.Context, caller domain.User, tripID, activityID uuid.UUID, in ActivityInput) (domain.Activity, error) {
	update, err := validateActivity(in)
	if err != nil {
		return domain.Activity{}, err
	}

	trip, err := s.authorizedTrip(ctx, caller, tripID)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Edit: %w", err)
	}
	activity, ok := trip.FindActivity(activityID)
	if !ok {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Edit: %w", domain.ErrNotFound)
	}
	if !trip.Contains(update.StartDate, update.EndDate) {
		return domain.Activity{}, errOutsideTrip
	}

	activity.Name = update.Name
	activity.Description = update.Description
	activity.StartDate = update.StartDate
	activity.EndDate = update.EndDate
	activity.Address = update.Address

	result, err := s.activities.Update(ctx, activity)
	if err != nil {
		return domain.Activity{}, fmt.Errorf("service.ActivityService.Edit: %w", err)
	}
	return result, nil
}

// Delete removes an activity from its trip.
func (s *ActivityService) Delete(ctx context.Context, caller domain.User, tripID, activityID uuid.UUID) error {
	trip, err := s.authorizedTrip(ctx, caller, tripID)
	if err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	if _, ok := trip.FindActivity(activityID); !ok {
		return fmt.Errorf("service.ActivityService.Delete: %w", domain.ErrNotFound)
	}
	if err := s.activities.Delete(ctx, tripID, activityID); err != nil {
		return fmt.Errorf("service.ActivityService.Delete: %w", err)
	}
	return nil
}

// CalendarExport renders every activity of the trip as one calendar document.
func (s *ActivityService) CalendarExport(ctx context.Context, caller domain.User, tripID uuid.UUID) ([]byte, error) {
	trip, err := s.authorizedTrip(ctx, caller, tripID)
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.CalendarExport: %w", err)
	}
	doc, err := s.calendar.Serialize(trip.CalendarEvents())
	if err != nil {
		return nil, fmt.Errorf("service.ActivityService.CalendarExport: %w", err)
	}
	return doc, nil
}

var errOutsideTrip = fmt.Errorf("%w: dates do not fit within the trip", domain.ErrConflict)

func (s *ActivityService) authorizedTrip(ctx context.Context, caller domain.User, tripID uuid.UUID) (domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, tripID)
	if err != nil {
		return domain.Trip{}, err
	}
	if !membership.IsAuthorized(caller, trip) {
		return domain.Trip{}, domain.ErrForbidden
	}
	return trip, nil
}

func validateActivity(in ActivityInput) (domain.Activity, error) {
	name, err := validateName(in.Name)
	if err != nil {
		return domain.Activity{}, err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return domain.Activity{}, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(desc) > maxDescLen {
		return domain.Activity{}, fmt.Errorf("%w: description must be at most %d characters", domain.ErrValidation, maxDescLen)
	}
	start, end, err := validateRange(in.StartDate, in.EndDate)
	if err != nil {
		return domain.Activity{}, err
	}
	addr, err := validateAddress(in.Address)
	if err != nil {
		return domain.Activity{}, err
	}
	return domain.Activity{Name: name, Description: desc, StartDate: start, EndDate: end, Address: addr}, nil
}
