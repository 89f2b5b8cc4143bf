package migration

import (
	"context"
	"io/fs"

	"go.uber.org/fx"

	dbadapter "github.com/molspect/imsbase/pkg/ims/adapter/database"
	"github.com/molspect/imsbase/pkg/ims/core/config"
)

// Runner resolves the metadata database connection and applies migrations
// against it.
type Runner struct {
	dbResolver dbadapter.DBConnectionResolver
	dbName     string
}

// RunnerParams defines the dependencies required to construct the Runner.
type RunnerParams struct {
	fx.In
	DBResolver dbadapter.DBConnectionResolver
	Cfg        *config.Config
}

// NewRunner creates the migration Runner for Fx.
func NewRunner(p RunnerParams) *Runner {
	dbName := p.Cfg.IMSBase.Store.DBRef
	if dbName == "" {
		dbName = "metadata"
	}
	return &Runner{dbResolver: p.DBResolver, dbName: dbName}
}

// Up applies all pending migrations from the given filesystem path.
func (r *Runner) Up(ctx context.Context, migrationFS fs.FS, path string) error {
	conn, err := r.dbResolver.ResolveDBConnection(ctx, r.dbName)
	if err != nil {
		return err
	}
	return NewMigrator(conn).Up(ctx, migrationFS, path, DefaultMigrationsTable)
}

// Down rolls back all applied migrations.
func (r *Runner) Down(ctx context.Context, migrationFS fs.FS, path string) error {
	conn, err := r.dbResolver.ResolveDBConnection(ctx, r.dbName)
	if err != nil {
		return err
	}
	return NewMigrator(conn).Down(ctx, migrationFS, path, DefaultMigrationsTable)
}

// Module provides the migration runner to Fx.
var Module = fx.Options(
	fx.Provide(NewRunner),
)
