// Package testutil holds the database helpers shared by the JoliDay
// integration tests. Everything here is driven by TEST_DATABASE_URL; tests
// that need a database skip when it is unset.
package testutil

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"testing"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	_ "github.com/jackc/pgx/v5/stdlib" // registers "pgx" driver for database/sql
	"github.com/pressly/goose/v3"

	"github.com/joliday/backend/internal/domain"
	"github.com/joliday/backend/migrations"
)

// DSNEnv names the variable holding the integration database URL.
const DSNEnv = "TEST_DATABASE_URL"

// MigrateMain brings the test database to the latest schema and then runs
// the package's tests. Call it from TestMain:
//
//	func TestMain(m *testing.M) { os.Exit(testutil.MigrateMain(m)) }
//
// Without TEST_DATABASE_URL the tests run unmigrated and the integration
// ones skip themselves through NewTx.
func MigrateMain(m *testing.M) int {
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		return m.Run()
	}

	db := MustOpenSQLDB(dsn)
	applied, err := Migrate(context.Background(), db)
	_ = db.Close()
	if err != nil {
		log.Fatalf("testutil.MigrateMain: %v", err)
	}
	if applied > 0 {
		log.Printf("testutil.MigrateMain: applied %d migrations", applied)
	}
	return m.Run()
}

// Migrate applies every pending goose migration and reports how many ran.
func Migrate(ctx context.Context, db *sql.DB) (int, error) {
	provider, err := goose.NewProvider(goose.DialectPostgres, db, migrations.FS)
	if err != nil {
		return 0, fmt.Errorf("create goose provider: %w", err)
	}
	results, err := provider.Up(ctx)
	if err != nil {
		return 0, fmt.Errorf("run migrations: %w", err)
	}
	return len(results), nil
}

// NewPool opens a pool on TEST_DATABASE_URL and closes it after the test.
func NewPool(t *testing.T) *pgxpool.Pool {
	t.Helper()

	pool, err := pgxpool.New(context.Background(), requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewPool: open pool: %v", err)
	}
	if err := pool.Ping(context.Background()); err != nil {
		pool.Close()
		t.Fatalf("testutil.NewPool: ping: %v", err)
	}

	t.Cleanup(pool.Close)
	return pool
}

// NewTx begins a transaction that is rolled back when the test finishes.
// Repos built on it see only the test's own writes, so trips, invites and
// messages created by one test never leak into another.
func NewTx(t *testing.T) pgx.Tx {
	t.Helper()
	pool := NewPool(t)

	tx, err := pool.Begin(context.Background())
	if err != nil {
		t.Fatalf("testutil.NewTx: begin: %v", err)
	}
	t.Cleanup(func() { _ = tx.Rollback(context.Background()) })
	return tx
}

// SeedRoles inserts the Admin and Vacationer roles inside tx, which every
// users row references.
func SeedRoles(t *testing.T, tx pgx.Tx) {
	t.Helper()
	for _, role := range domain.Roles {
		_, err := tx.Exec(context.Background(),
			`INSERT INTO roles (name) VALUES ($1) ON CONFLICT (name) DO NOTHING`, string(role))
		if err != nil {
			t.Fatalf("testutil.SeedRoles: %s: %v", role, err)
		}
	}
}

// NewSQLDB opens a database/sql handle on TEST_DATABASE_URL for goose and
// closes it after the test.
func NewSQLDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("pgx", requireDSN(t))
	if err != nil {
		t.Fatalf("testutil.NewSQLDB: open: %v", err)
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		t.Fatalf("testutil.NewSQLDB: ping: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })
	return db
}

// MustOpenSQLDB opens a database/sql handle for dsn and panics on failure.
// It serves TestMain functions, which have no *testing.T.
func MustOpenSQLDB(dsn string) *sql.DB {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		panic("testutil.MustOpenSQLDB: open: " + err.Error())
	}
	if err := db.PingContext(context.Background()); err != nil {
		_ = db.Close()
		panic("testutil.MustOpenSQLDB: ping: " + err.Error())
	}
	return db
}

func requireDSN(t *testing.T) string {
	t.Helper()
	dsn := os.Getenv(DSNEnv)
	if dsn == "" {
		t.Skip(DSNEnv + " not set; skipping integration test")
	}
	return dsn
}
