package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joliday/backend/internal/domain"
)

// TripRepo defines the persistence operations for Trips and their member edges.
// The service layer depends on this interface, not the concrete Postgres implementation,
// which allows the service to be unit-tested with a fake.
type TripRepo interface {
	// Create inserts a new trip owned by trip.Owner and returns the persisted
	// record (with DB-generated id, created_at, and updated_at populated).
	Create(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// GetByID retrieves the full trip aggregate: owner, members, activities
	// and transactions.
	// Returns domain.ErrNotFound if no trip with that ID exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error)

	// ListForUser returns every trip the user owns or belongs to, ordered by
	// start date ascending. Members and activities are populated.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error)

	// ListActiveOn returns every trip whose inclusive range contains date.
	ListActiveOn(ctx context.Context, date time.Time) ([]domain.Trip, error)

	// List returns all trips ordered by start date ascending.
	List(ctx context.Context) ([]domain.Trip, error)

	// Update overwrites name, dates and address of an existing trip and returns
	// the updated record. Returns domain.ErrNotFound if the trip does not exist.
	Update(ctx context.Context, trip domain.Trip) (domain.Trip, error)

	// Delete removes a trip and its activities atomically.
	// Returns domain.ErrNotFound if it does not exist.
	Delete(ctx context.Context, id uuid.UUID) error

	// AddMember records a membership edge. Idempotent.
	AddMember(ctx context.Context, tripID, userID uuid.UUID) error

	// RemoveMember deletes a membership edge.
	// Returns domain.ErrNotFound if the user was not a member.
	RemoveMember(ctx context.Context, tripID, userID uuid.UUID) error
}

// pgTripRepo is the Postgres implementation of TripRepo.
type pgTripRepo struct {
	db db
}

// NewTripRepo constructs a TripRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewTripRepo(db db) TripRepo {
	return &pgTripRepo{db: db}
}

const tripSelect = `
	SELECT t.id, t.name, t.start_date, t.end_date,
	       t.country, t.postal_code, t.city, t.street_name, t.street_number,
	       t.created_at, t.updated_at, ` + userColumns + `
	FROM trips t
	JOIN users u ON u.id = t.owner_id`

// Create inserts a new trip row and returns the persisted record.
func (r *pgTripRepo) Create(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		INSERT INTO trips (name, start_date, end_date, country, postal_code, city,
		                   street_name, street_number, owner_id)
		VALUES (@name, @start_date, @end_date, @country, @postal_code, @city,
		        @street_name, @street_number, @owner_id)
		RETURNING id, created_at, updated_at`

	args := addressArgs(pgx.NamedArgs{
		"name":       trip.Name,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
		"owner_id":   trip.Owner.ID,
	}, trip.Address)

	var id pgtype.UUID
	if err := r.db.QueryRow(ctx, q, args).Scan(&id, &trip.CreatedAt, &trip.UpdatedAt); err != nil {
		return domain.Trip{}, writeErr("repo.TripRepo.Create", err)
	}

	trip.ID = uuid.UUID(id.Bytes)
	trip.StartDate = domain.DateOf(trip.StartDate)
	trip.EndDate = domain.DateOf(trip.EndDate)
	trip.Members = []domain.User{}
	trip.Activities = []domain.Activity{}
	return trip, nil
}

// GetByID retrieves a trip by primary key along with its members and activities.
func (r *pgTripRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Trip, error) {
	const q = tripSelect + ` WHERE t.id = @id`

	t, err := scanTrip(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Trip{}, readErr("repo.TripRepo.GetByID", err)
	}

	trips := []domain.Trip{t}
	if err := r.hydrate(ctx, trips); err != nil {
		return domain.Trip{}, readErr("repo.TripRepo.GetByID", err)
	}
	return trips[0], nil
}

// ListForUser returns the trips a user owns or is a member of.
func (r *pgTripRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Trip, error) {
	const q = tripSelect + `
		WHERE t.owner_id = @user_id
		   OR EXISTS (SELECT 1 FROM trip_members m WHERE m.trip_id = t.id AND m.user_id = @user_id)
		ORDER BY t.start_date, t.created_at`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, readErr("repo.TripRepo.ListForUser", err)
	}
	return trips, nil
}

// ListActiveOn returns trips in progress on the given calendar date.
func (r *pgTripRepo) ListActiveOn(ctx context.Context, date time.Time) ([]domain.Trip, error) {
	const q = tripSelect + `
		WHERE t.start_date <= @date AND t.end_date >= @date
		ORDER BY t.start_date, t.created_at`

	trips, err := r.list(ctx, q, pgx.NamedArgs{"date": domain.DateOf(date)})
	if err != nil {
		return nil, readErr("repo.TripRepo.ListActiveOn", err)
	}
	return trips, nil
}

// List returns every trip in the system.
func (r *pgTripRepo) List(ctx context.Context) ([]domain.Trip, error) {
	const q = tripSelect + ` ORDER BY t.start_date, t.created_at`

	trips, err := r.list(ctx, q, pgx.NamedArgs{})
	if err != nil {
		return nil, readErr("repo.TripRepo.List", err)
	}
	return trips, nil
}

// Update overwrites the mutable fields of a trip. Owner, members and
// activities on the input are carried through to the result unchanged.
func (r *pgTripRepo) Update(ctx context.Context, trip domain.Trip) (domain.Trip, error) {
	const q = `
		UPDATE trips
		SET name          = @name,
		    start_date    = @start_date,
		    end_date      = @end_date,
		    country       = @country,
		    postal_code   = @postal_code,
		    city          = @city,
		    street_name   = @street_name,
		    street_number = @street_number,
		    updated_at    = now()
		WHERE id = @id
		RETURNING updated_at`

	args := addressArgs(pgx.NamedArgs{
		"id":         trip.ID,
		"name":       trip.Name,
		"start_date": trip.StartDate,
		"end_date":   trip.EndDate,
	}, trip.Address)

	if err := r.db.QueryRow(ctx, q, args).Scan(&trip.UpdatedAt); err != nil {
		return domain.Trip{}, writeErr("repo.TripRepo.Update", err)
	}
	trip.StartDate = domain.DateOf(trip.StartDate)
	trip.EndDate = domain.DateOf(trip.EndDate)
	return trip, nil
}

// Delete removes the trip's activities and then the trip in one transaction.
// Member edges, invites and messages go with the trip via ON DELETE CASCADE.
func (r *pgTripRepo) Delete(ctx context.Context, id uuid.UUID) error {
	args := pgx.NamedArgs{"id": id}

	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `DELETE FROM activities WHERE trip_id = @id`, args); err != nil {
			return err
		}
		tag, err := tx.Exec(ctx, `DELETE FROM trips WHERE id = @id`, args)
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return writeErr("repo.TripRepo.Delete", err)
	}
	return nil
}

func (r *pgTripRepo) AddMember(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `
		INSERT INTO trip_members (trip_id, user_id)
		VALUES (@trip_id, @user_id)
		ON CONFLICT (trip_id, user_id) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}); err != nil {
		return writeErr("repo.TripRepo.AddMember", err)
	}
	return nil
}

func (r *pgTripRepo) RemoveMember(ctx context.Context, tripID, userID uuid.UUID) error {
	const q = `DELETE FROM trip_members WHERE trip_id = @trip_id AND user_id = @user_id`

	tag, err := r.db.Exec(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID})
	if err != nil {
		return writeErr("repo.TripRepo.RemoveMember", err)
	}
	if tag.RowsAffected() == 0 {
		return writeErr("repo.TripRepo.RemoveMember", domain.ErrNotFound)
	}
	return nil
}

// list runs a tripSelect query and hydrates every returned trip.
func (r *pgTripRepo) list(ctx context.Context, q string, args pgx.NamedArgs) ([]domain.Trip, error) {
	rows, err := r.db.Query(ctx, q, args)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []domain.Trip{}
	for rows.Next() {
		t, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	if err := r.hydrate(ctx, trips); err != nil {
		return nil, err
	}
	return trips, nil
}

// hydrate loads members, activities and transactions for every trip in
// three queries.
func (r *pgTripRepo) hydrate(ctx context.Context, trips []domain.Trip) error {
	if len(trips) == 0 {
		return nil
	}

	index := make(map[uuid.UUID]int, len(trips))
	ids := make([]uuid.UUID, len(trips))
	for i := range trips {
		index[trips[i].ID] = i
		ids[i] = trips[i].ID
		trips[i].Members = []domain.User{}
		trips[i].Activities = []domain.Activity{}
		trips[i].Transactions = []domain.Transaction{}
	}
	args := pgx.NamedArgs{"ids": idStrings(ids)}

	const membersQ = `
		SELECT m.trip_id, ` + userColumns + `
		FROM trip_members m
		JOIN users u ON u.id = m.user_id
		WHERE m.trip_id = ANY(@ids::uuid[])
		ORDER BY m.joined_at, u.email`

	rows, err := r.db.Query(ctx, membersQ, args)
	if err != nil {
		return err
	}
	defer rows.Close()
	for rows.Next() {
		var (
			tripID pgtype.UUID
			row    userRow
		)
		if err := rows.Scan(append([]any{&tripID}, row.dest()...)...); err != nil {
			return err
		}
		i := index[uuid.UUID(tripID.Bytes)]
		trips[i].Members = append(trips[i].Members, row.user())
	}
	if err := rows.Err(); err != nil {
		return err
	}

	activityRows, err := r.db.Query(ctx, activitySelect+` WHERE a.trip_id = ANY(@ids::uuid[]) ORDER BY a.start_date, a.created_at`, args)
	if err != nil {
		return err
	}
	defer activityRows.Close()
	for activityRows.Next() {
		a, err := scanActivity(activityRows)
		if err != nil {
			return err
		}
		i := index[a.TripID]
		trips[i].Activities = append(trips[i].Activities, a)
	}
	if err := activityRows.Err(); err != nil {
		return err
	}

	const transactionsQ = `
		SELECT x.id, x.trip_id, x.name, x.description, x.amount_cents,
		       coalesce(x.invoice_url, ''), x.created_at, ` + userColumns + `
		FROM transactions x
		JOIN users u ON u.id = x.owner_id
		WHERE x.trip_id = ANY(@ids::uuid[])
		ORDER BY x.created_at, x.id`

	txRows, err := r.db.Query(ctx, transactionsQ, args)
	if err != nil {
		return err
	}
	defer txRows.Close()
	for txRows.Next() {
		var (
			x      domain.Transaction
			id     pgtype.UUID
			tripID pgtype.UUID
			owner  userRow
		)
		dest := append([]any{&id, &tripID, &x.Name, &x.Description, &x.AmountCents, &x.InvoiceURL, &x.CreatedAt}, owner.dest()...)
		if err := txRows.Scan(dest...); err != nil {
			return err
		}
		x.ID = uuid.UUID(id.Bytes)
		x.TripID = uuid.UUID(tripID.Bytes)
		x.Owner = owner.user()
		i := index[x.TripID]
		trips[i].Transactions = append(trips[i].Transactions, x)
	}
	return txRows.Err()
}

// scanTrip maps a tripSelect row into a domain.Trip with its owner.
// Members and activities are left for hydrate.
func scanTrip(s scanner) (domain.Trip, error) {
	var (
		t         domain.Trip
		id        pgtype.UUID
		startDate pgtype.Date
		endDate   pgtype.Date
		owner     userRow
	)

	dest := []any{&id, &t.Name, &startDate, &endDate}
	dest = append(dest, addressDest(&t.Address)...)
	dest = append(dest, &t.CreatedAt, &t.UpdatedAt)
	dest = append(dest, owner.dest()...)

	if err := s.Scan(dest...); err != nil {
		return domain.Trip{}, err
	}

	t.ID = uuid.UUID(id.Bytes)
	t.StartDate = startDate.Time
	t.EndDate = endDate.Time
	t.Owner = owner.user()
	return t, nil
}
