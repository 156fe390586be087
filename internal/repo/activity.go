package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joliday/backend/internal/domain"
)

// ActivityRepo defines the persistence operations for Activities.
// Activities are always addressed through their parent trip.
type ActivityRepo interface {
	// Create inserts a new activity under activity.TripID.
	Create(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// Update overwrites the mutable fields of an activity that belongs to
	// activity.TripID. Returns domain.ErrNotFound otherwise.
	Update(ctx context.Context, activity domain.Activity) (domain.Activity, error)

	// Delete removes an activity from a trip.
	// Returns domain.ErrNotFound if the activity is not part of that trip.
	Delete(ctx context.Context, tripID, id uuid.UUID) error
}

// pgActivityRepo is the Postgres implementation of ActivityRepo.
type pgActivityRepo struct {
	db db
}

// NewActivityRepo constructs an ActivityRepo backed by the provided db connection.
func NewActivityRepo(db db) ActivityRepo {
	return &pgActivityRepo{db: db}
}

const activityColumns = `
	a.id, a.trip_id, a.name, a.description, a.start_date, a.end_date,
	a.country, a.postal_code, a.city, a.street_name, a.street_number,
	a.created_at, a.updated_at`

const activitySelect = `SELECT ` + activityColumns + ` FROM activities a`

func (r *pgActivityRepo) Create(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		INSERT INTO activities AS a (trip_id, name, description, start_date, end_date,
		                             country, postal_code, city, street_name, street_number)
		VALUES (@trip_id, @name, @description, @start_date, @end_date,
		        @country, @postal_code, @city, @street_name, @street_number)
		RETURNING ` + activityColumns

	args := addressArgs(pgx.NamedArgs{
		"trip_id":     activity.TripID,
		"name":        activity.Name,
		"description": activity.Description,
		"start_date":  activity.StartDate,
		"end_date":    activity.EndDate,
	}, activity.Address)

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, writeErr("repo.ActivityRepo.Create", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Update(ctx context.Context, activity domain.Activity) (domain.Activity, error) {
	const q = `
		UPDATE activities AS a
		SET name          = @name,
		    description   = @description,
		    start_date    = @start_date,
		    end_date      = @end_date,
		    country       = @country,
		    postal_code   = @postal_code,
		    city          = @city,
		    street_name   = @street_name,
		    street_number = @street_number,
		    updated_at    = now()
		WHERE a.id = @id AND a.trip_id = @trip_id
		RETURNING ` + activityColumns

	args := addressArgs(pgx.NamedArgs{
		"id":          activity.ID,
		"trip_id":     activity.TripID,
		"name":        activity.Name,
		"description": activity.Description,
		"start_date":  activity.StartDate,
		"end_date":    activity.EndDate,
	}, activity.Address)

	result, err := scanActivity(r.db.QueryRow(ctx, q, args))
	if err != nil {
		return domain.Activity{}, writeErr("repo.ActivityRepo.Update", err)
	}
	return result, nil
}

func (r *pgActivityRepo) Delete(ctx context.Context, tripID, id uuid.UUID) error {
	const q = `DELETE FROM activities WHERE id = @id AND trip_id = @trip_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"id": id, "trip_id": tripID})
	if err != nil {
		return writeErr("repo.ActivityRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return writeErr("repo.ActivityRepo.Delete", domain.ErrNotFound)
	}
	return nil
}

// scanActivity maps an activityColumns row into a domain.Activity.
func scanActivity(s scanner) (domain.Activity, error) {
	var (
		a         domain.Activity
		id        pgtype.UUID
		tripID    pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
	)

	dest := []any{&id, &tripID, &a.Name, &a.Description, &startDate, &endDate}
	dest = append(dest, addressDest(&a.Address)...)
	dest = append(dest, &a.CreatedAt, &a.UpdatedAt)

	if err := s.Scan(dest...); err != nil {
		return domain.Activity{}, err
	}

	a.ID = uuid.UUID(id.Bytes)
	a.TripID = uuid.UUID(tripID.Bytes)
	a.StartDate = startDate.Time
	a.EndDate = endDate.Time
	return a, nil
}
