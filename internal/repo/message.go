package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"

	"github.com/joliday/backend/internal/domain"
)

// MessageRepo defines the persistence operations for trip chat messages.
// Messages are append-only.
type MessageRepo interface {
	// Create appends a message sent by message.Owner.ID and returns it with
	// id, sent_at and the full owner populated.
	Create(ctx context.Context, message domain.Message) (domain.Message, error)

	// ListRecent returns at most limit of the newest messages of a trip,
	// ordered oldest first.
	ListRecent(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error)
}

// pgMessageRepo is the Postgres implementation of MessageRepo.
type pgMessageRepo struct {
	db db
}

// NewMessageRepo constructs a MessageRepo backed by the provided db connection.
func NewMessageRepo(db db) MessageRepo {
	return &pgMessageRepo{db: db}
}

func (r *pgMessageRepo) Create(ctx context.Context, message domain.Message) (domain.Message, error) {
	const q = `
		WITH m AS (
			INSERT INTO messages (trip_id, owner_id, content)
			VALUES (@trip_id, @owner_id, @content)
			RETURNING id, owner_id, sent_at
		)
		SELECT m.id, m.sent_at, ` + userColumns + `
		FROM m
		JOIN users u ON u.id = m.owner_id`

	args := pgx.NamedArgs{
		"trip_id":  message.TripID,
		"owner_id": message.Owner.ID,
		"content":  message.Content,
	}

	var (
		id    pgtype.UUID
		owner userRow
	)
	dest := append([]any{&id, &message.SentAt}, owner.dest()...)
	if err := r.db.QueryRow(ctx, q, args).Scan(dest...); err != nil {
		return domain.Message{}, writeErr("repo.MessageRepo.Create", err)
	}
	message.ID = uuid.UUID(id.Bytes)
	message.Owner = owner.user()
	return message, nil
}

func (r *pgMessageRepo) ListRecent(ctx context.Context, tripID uuid.UUID, limit int) ([]domain.Message, error) {
	const q = `
		SELECT m.id, m.trip_id, m.content, m.sent_at, ` + userColumns + `
		FROM (
			SELECT id, seq, trip_id, owner_id, content, sent_at
			FROM messages
			WHERE trip_id = @trip_id
			ORDER BY seq DESC
			LIMIT @limit
		) m
		JOIN users u ON u.id = m.owner_id
		ORDER BY m.seq`

	rows, err := r.db.Query(ctx, q, pgx.NamedArgs{"trip_id": tripID, "limit": limit})
	if err != nil {
		return nil, readErr("repo.MessageRepo.ListRecent", err)
	}
	defer rows.Close()

	messages := []domain.Message{}
	for rows.Next() {
		var (
			m      domain.Message
			id     pgtype.UUID
			tripID pgtype.UUID
			owner  userRow
		)
		dest := append([]any{&id, &tripID, &m.Content, &m.SentAt}, owner.dest()...)
		if err := rows.Scan(dest...); err != nil {
			return nil, readErr("repo.MessageRepo.ListRecent", err)
		}
		m.ID = uuid.UUID(id.Bytes)
		m.TripID = uuid.UUID(tripID.Bytes)
		m.Owner = owner.user()
		messages = append(messages, m)
	}
	if err := rows.Err(); err != nil {
		return nil, readErr("repo.MessageRepo.ListRecent", err)
	}
	return messages, nil
}
