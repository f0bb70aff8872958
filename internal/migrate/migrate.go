// Package migrate applies the embedded catalog schema migrations.
//
// Importer commands may run concurrently against the same database, so Up
// serializes schema creation with a session-level advisory lock held on a
// dedicated connection for the duration of the goose run.
package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// FS exposes the embedded migrations for test helpers.
func FS() fs.FS {
	sub, err := fs.Sub(embedMigrations, "migrations")
	if err != nil {
		panic(err)
	}
	return sub
}

// Up migrates the database at dsn to the latest schema version under the
// advisory lock identified by lockKey.
func Up(ctx context.Context, dsn string, lockKey int64) error {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return fmt.Errorf("migrate: open: %w", err)
	}
	defer db.Close()

	// The lock is session-scoped, so it must be taken and released on one
	// pinned connection while goose works through the pool.
	conn, err := db.Conn(ctx)
	if err != nil {
		return fmt.Errorf("migrate: acquire lock conn: %w", err)
	}
	defer conn.Close()

	if _, err := conn.ExecContext(ctx, "SELECT pg_advisory_lock($1)", lockKey); err != nil {
		return fmt.Errorf("migrate: advisory lock %d: %w", lockKey, err)
	}
	defer conn.ExecContext(ctx, "SELECT pg_advisory_unlock($1)", lockKey)

	provider, err := goose.NewProvider(goose.DialectPostgres, db, FS())
	if err != nil {
		return fmt.Errorf("migrate: create provider: %w", err)
	}
	if _, err := provider.Up(ctx); err != nil {
		return fmt.Errorf("migrate: up: %w", err)
	}
	return nil
}
