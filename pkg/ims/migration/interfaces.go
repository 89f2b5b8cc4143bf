// Package migration applies the relational schema with golang-migrate over
// embedded SQL migration files.
package migration

import (
	"context"
	"io/fs"
)

// DefaultMigrationsTable is the bookkeeping table golang-migrate maintains.
const DefaultMigrationsTable = "schema_migrations"

// Migrator applies or rolls back schema migrations from a migration source.
type Migrator interface {
	// Up applies all pending migrations from the given filesystem path.
	Up(ctx context.Context, migrationFS fs.FS, path string, tableName string) error

	// Down rolls back all applied migrations.
	Down(ctx context.Context, migrationFS fs.FS, path string, tableName string) error

	// Close releases resources held by the migrator.
	Close() error
}
