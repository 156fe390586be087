package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joliday/backend/internal/domain"
)

// InviteRepo defines the persistence operations for Invites.
type InviteRepo interface {
	// Create records an unread invite for userID to join tripID.
	// Returns domain.ErrConflict if that user is already invited to the trip.
	Create(ctx context.Context, tripID, userID uuid.UUID) (domain.Invite, error)

	// GetByID retrieves an invite with its trip name.
	// Returns domain.ErrNotFound if no such invite exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.Invite, error)

	// Exists reports whether userID already holds an invite to tripID.
	Exists(ctx context.Context, tripID, userID uuid.UUID) (bool, error)

	// ListForUser returns every invite addressed to userID, newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Invite, error)

	// MarkRead flags an invite as read. Returns domain.ErrNotFound if absent.
	MarkRead(ctx context.Context, id uuid.UUID) error

	// Delete removes an invite. Returns domain.ErrNotFound if absent.
	Delete(ctx context.Context, id uuid.UUID) error

	// Accept turns the invite into a membership edge and deletes it,
	// in one transaction.
	Accept(ctx context.Context, invite domain.Invite) error
}

// pgInviteRepo is the Postgres implementation of InviteRepo.
type pgInviteRepo struct {
	db db
}

// NewInviteRepo constructs an InviteRepo backed by the provided db connection.
func NewInviteRepo(db db) InviteRepo {
	return &pgInviteRepo{db: db}
}

func (r *pgInviteRepo) Create(ctx context.Context, tripID, userID uuid.UUID) (domain.Invite, error) {
	const q = `
		WITH i AS (
			INSERT INTO invites (trip_id, user_id)
			VALUES (@trip_id, @user_id)
			RETURNING id, trip_id, user_id, is_read, created_at
		)
		SELECT i.id, i.trip_id, t.name, i.user_id, i.is_read, i.created_at
		FROM i
		JOIN trips t ON t.id = i.trip_id`

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}))
	if err != nil {
		return domain.Invite{}, writeErr("repo.InviteRepo.Create", err)
	}
	return result, nil
}

func (r *pgInviteRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.Invite, error) {
	const q = `
		SELECT i.id, i.trip_id, t.name, i.user_id, i.is_read, i.created_at
		FROM invites i
		JOIN trips t ON t.id = i.trip_id
		WHERE i.id = @id`

	result, err := scanInvite(r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}))
	if err != nil {
		return domain.Invite{}, readErr("repo.InviteRepo.GetByID", err)
	}
	return result, nil
}

func (r *pgInviteRepo) Exists(ctx context.Context, tripID, userID uuid.UUID) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM invites WHERE trip_id = @trip_id AND user_id = @user_id)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"trip_id": tripID, "user_id": userID}).Scan(&exists); err != nil {
		return false, readErr("repo.InviteRepo.Exists", err)
	}
	return exists, nil
}

func (r *pgInviteRepo) ListForUser(ctx context.Context, userID uuid.UUID) ([]domain.Invite, error) {
	const q = `
		SELECT i.id, i.trip_id, t.name, i.user_id, i.is_read, i.created_at
		FROM invites i
		JOIN trips t ON t.id = i.trip_id
		WHERE i.user_id = @user_id
		ORDER BY i.created_at DESC`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"user_id": userID})
	if err != nil {
		return nil, readErr("repo.InviteRepo.ListForUser", err)
	}
	defer rows.Close()

	invites := []domain.Invite{}
	for rows.Next() {
		inv, err := scanInvite(rows)
		if err != nil {
			return nil, readErr("repo.InviteRepo.ListForUser", err)
		}
		invites = append(invites, inv)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("repo.InviteRepo.ListForUser", err)
	}
	return invites, nil
}

func (r *pgInviteRepo) MarkRead(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `UPDATE invites SET is_read = true WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return writeErr("repo.InviteRepo.MarkRead", err)
	}
	if tag.RowsAffected() == 0 {
		return writeErr("repo.InviteRepo.MarkRead", domain.ErrNotFound)
	}
	return nil
}

func (r *pgInviteRepo) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM invites WHERE id = @id`, pgx.NamedArgs{"id": id})
	if err != nil {
		return writeErr("repo.InviteRepo.Delete", err)
	}
	if tag.RowsAffected() == 0 {
		return writeErr("repo.InviteRepo.Delete", domain.ErrNotFound)
	}
	return nil
}

// Accept inserts the member edge before deleting the invite so that a
// failure in either step leaves the invite in place.
func (r *pgInviteRepo) Accept(ctx context.Context, invite domain.Invite) error {
	err := pgx.BeginFunc(ctx, r.db, func(tx pgx.Tx) error {
		const insert = `
			INSERT INTO trip_members (trip_id, user_id)
			VALUES (@trip_id, @user_id)
			ON CONFLICT (trip_id, user_id) DO NOTHING`
		if _, err := tx.Exec(ctx, insert, pgx.NamedArgs{"trip_id": invite.TripID, "user_id": invite.UserID}); err != nil {
			return err
		}

		tag, err := tx.Exec(ctx, `DELETE FROM invites WHERE id = @id`, pgx.NamedArgs{"id": invite.ID})
		if err != nil {
			return err
		}
		if tag.RowsAffected() == 0 {
			return domain.ErrNotFound
		}
		return nil
	})
	if err != nil {
		return writeErr("repo.InviteRepo.Accept", err)
	}
	return nil
}

func scanInvite(s scanner) (domain.Invite, error) {
	var (
		inv    domain.Invite
		id     pgtype.UUID
		tripID pgtype.UUID
		userID pgtype.UUID
	)
	if err := s.Scan(&id, &tripID, &inv.TripName, &userID, &inv.IsRead, &inv.CreatedAt); err != nil {
		return domain.Invite{}, err
	}
	inv.ID = uuid.UUID(id.Bytes)
	inv.TripID = uuid.UUID(tripID.Bytes)
	inv.UserID = uuid.UUID(userID.Bytes)
	return inv, nil
}
