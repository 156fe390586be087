// Package repo contains all database access logic for the JoliDay API.
// Each aggregate has its own file with an interface and a Postgres implementation.
// No business logic lives here, only SQL, type mapping and error classification.
package repo

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joliday/backend/internal/domain"
)

// db is the minimal interface satisfied by *pgxpool.Pool, pgx.Conn, and pgx.Tx.
// Accepting this interface instead of *pgxpool.Pool directly allows integration
// tests to pass a transaction that is rolled back after each test, giving free
// per-test isolation without any manual cleanup.
//
// Begin on a pgx.Tx opens a savepoint, so multi-row writes stay atomic in both cases.
type db interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Begin(ctx context.Context) (pgx.Tx, error)
}

// scanner is satisfied by both pgx.Row and pgx.Rows.
type scanner interface {
	Scan(dest ...any) error
}

// Postgres error codes the repos translate into domain errors.
const (
	uniqueViolation     = "23505"
	foreignKeyViolation = "23503"
)

// readErr classifies a failure while loading data.
// Missing rows become domain.ErrNotFound; everything else is domain.ErrDataAccess.
func readErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrDataAccess, err)
}

// writeErr classifies a failure while persisting a mutation.
func writeErr(op string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) || errors.Is(err, domain.ErrNotFound) {
		return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
	}
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch pgErr.Code {
		case uniqueViolation:
			return fmt.Errorf("%s: %w: already exists", op, domain.ErrConflict)
		case foreignKeyViolation:
			return fmt.Errorf("%s: %w", op, domain.ErrNotFound)
		}
	}
	return fmt.Errorf("%s: %w: %w", op, domain.ErrPersistence, err)
}

// idStrings renders ids for an `= ANY(@ids::uuid[])` parameter.
func idStrings(ids []uuid.UUID) []string {
	out := make([]string, len(ids))
	for i, id := range ids {
		out[i] = id.String()
	}
	return out
}

// userColumns selects a users row aliased as u, in userRow.dest order.
const userColumns = `u.id, u.email, u.name, u.first_name, u.avatar_url, u.role, u.created_at`

// userRow collects scan targets for userColumns.
type userRow struct {
	id   pgtype.UUID
	role string
	u    domain.User
}

func (r *userRow) dest() []any {
	return []any{&r.id, &r.u.Email, &r.u.Name, &r.u.FirstName, &r.u.AvatarURL, &r.role, &r.u.CreatedAt}
}

func (r *userRow) user() domain.User {
	u := r.u
	u.ID = uuid.UUID(r.id.Bytes)
	u.Role = domain.Role(r.role)
	return u
}

// addressDest returns scan targets for the five address columns,
// in the order country, postal_code, city, street_name, street_number.
func addressDest(a *domain.Address) []any {
	return []any{&a.Country, &a.PostalCode, &a.City, &a.StreetName, &a.StreetNumber}
}

// addressArgs adds the address columns to a named-argument set.
func addressArgs(args pgx.NamedArgs, a domain.Address) pgx.NamedArgs {
	args["country"] = a.Country
	args["postal_code"] = a.PostalCode
	args["city"] = a.City
	args["street_name"] = a.StreetName
	args["street_number"] = a.StreetNumber
	return args
}
