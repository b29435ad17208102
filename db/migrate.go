package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/Dosada05/tourney/db/migrations"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/pgdialect"
	"github.com/uptrace/bun/migrate"
)

const (
	migrationTable     = "schema_migrations"
	migrationLockTable = "schema_migration_locks"
)

// NewMigrator wraps an open connection for the embedded migration set.
// lib/pq stays the driver; bun is only used to track and run migrations.
func NewMigrator(conn *sql.DB) (*migrate.Migrator, error) {
	if conn == nil {
		return nil, errors.New("sql db is required")
	}
	bunDB := bun.NewDB(conn, pgdialect.New())
	return migrate.NewMigrator(bunDB, migrations.Migrations,
		migrate.WithTableName(migrationTable),
		migrate.WithLocksTableName(migrationLockTable),
	), nil
}

// Migrate creates the bookkeeping tables if needed and applies pending migrations
// as one group. A zero group means nothing was pending.
func Migrate(ctx context.Context, conn *sql.DB) (*migrate.MigrationGroup, error) {
	migrator, err := NewMigrator(conn)
	if err != nil {
		return nil, err
	}
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = migrator.Unlock(ctx) }()

	group, err := migrator.Migrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("apply migrations: %w", err)
	}
	return group, nil
}

// Rollback reverts the last applied migration group.
func Rollback(ctx context.Context, conn *sql.DB) (*migrate.MigrationGroup, error) {
	migrator, err := NewMigrator(conn)
	if err != nil {
		return nil, err
	}
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	if err := migrator.Lock(ctx); err != nil {
		return nil, fmt.Errorf("lock migrations: %w", err)
	}
	defer func() { _ = migrator.Unlock(ctx) }()

	group, err := migrator.Rollback(ctx)
	if err != nil {
		return nil, fmt.Errorf("rollback migrations: %w", err)
	}
	return group, nil
}

// MigrationStatus returns every known migration with its applied state.
func MigrationStatus(ctx context.Context, conn *sql.DB) (migrate.MigrationSlice, error) {
	migrator, err := NewMigrator(conn)
	if err != nil {
		return nil, err
	}
	if err := migrator.Init(ctx); err != nil {
		return nil, fmt.Errorf("init migrations: %w", err)
	}
	ms, err := migrator.MigrationsWithStatus(ctx)
	if err != nil {
		return nil, fmt.Errorf("migration status: %w", err)
	}
	return ms, nil
}
