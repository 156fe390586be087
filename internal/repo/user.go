package repo

import (
	"context"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/joliday/backend/internal/domain"
)

// UserRepo defines the persistence operations for Users and their roles.
type UserRepo interface {
	// Create inserts a new user and returns the persisted record.
	// Returns domain.ErrConflict if the email is already taken (case-insensitive).
	Create(ctx context.Context, user domain.User) (domain.User, error)

	// GetByID retrieves a user by primary key.
	// Returns domain.ErrNotFound if no such user exists.
	GetByID(ctx context.Context, id uuid.UUID) (domain.User, error)

	// GetByEmail retrieves a user by email, ignoring case.
	// Returns domain.ErrNotFound if no such user exists.
	GetByEmail(ctx context.Context, email string) (domain.User, error)

	// Count returns the number of registered users.
	Count(ctx context.Context) (int64, error)

	// RoleExists reports whether the named role has been bootstrapped.
	RoleExists(ctx context.Context, role domain.Role) (bool, error)

	// CreateRole inserts a role. Idempotent.
	CreateRole(ctx context.Context, role domain.Role) error
}

// pgUserRepo is the Postgres implementation of UserRepo.
type pgUserRepo struct {
	db db
}

// NewUserRepo constructs a UserRepo backed by the provided db connection.
// In production pass *pgxpool.Pool; in tests pass a pgx.Tx for rollback isolation.
func NewUserRepo(db db) UserRepo {
	return &pgUserRepo{db: db}
}

func (r *pgUserRepo) Create(ctx context.Context, user domain.User) (domain.User, error) {
	const q = `
		INSERT INTO users AS u (email, name, first_name, avatar_url, role)
		VALUES (@email, @name, @first_name, @avatar_url, @role)
		RETURNING ` + userColumns

	args := pgx.NamedArgs{
		"email":      user.Email,
		"name":       user.Name,
		"first_name": user.FirstName,
		"avatar_url": user.AvatarURL,
		"role":       string(user.Role),
	}

	var row userRow
	if err := r.db.QueryRow(ctx, q, args).Scan(row.dest()...); err != nil {
		return domain.User{}, writeErr("repo.UserRepo.Create", err)
	}
	return row.user(), nil
}

func (r *pgUserRepo) GetByID(ctx context.Context, id uuid.UUID) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE u.id = @id`

	var row userRow
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"id": id}).Scan(row.dest()...); err != nil {
		return domain.User{}, readErr("repo.UserRepo.GetByID", err)
	}
	return row.user(), nil
}

func (r *pgUserRepo) GetByEmail(ctx context.Context, email string) (domain.User, error) {
	const q = `SELECT ` + userColumns + ` FROM users u WHERE lower(u.email) = lower(@email)`

	var row userRow
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"email": email}).Scan(row.dest()...); err != nil {
		return domain.User{}, readErr("repo.UserRepo.GetByEmail", err)
	}
	return row.user(), nil
}

func (r *pgUserRepo) Count(ctx context.Context) (int64, error) {
	var n int64
	if err := r.db.QueryRow(ctx, `SELECT count(*) FROM users`).Scan(&n); err != nil {
		return 0, readErr("repo.UserRepo.Count", err)
	}
	return n, nil
}

func (r *pgUserRepo) RoleExists(ctx context.Context, role domain.Role) (bool, error) {
	const q = `SELECT EXISTS (SELECT 1 FROM roles WHERE name = @name)`

	var exists bool
	if err := r.db.QueryRow(ctx, q, pgx.NamedArgs{"name": string(role)}).Scan(&exists); err != nil {
		return false, readErr("repo.UserRepo.RoleExists", err)
	}
	return exists, nil
}

func (r *pgUserRepo) CreateRole(ctx context.Context, role domain.Role) error {
	const q = `INSERT INTO roles (name) VALUES (@name) ON CONFLICT (name) DO NOTHING`

	if _, err := r.db.Exec(ctx, q, pgx.NamedArgs{"name": string(role)}); err != nil {
		return writeErr("repo.UserRepo.CreateRole", err)
	}
	return nil
}
