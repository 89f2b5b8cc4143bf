package sql

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/fx"

	coreAdapter "github.com/molspect/imsbase/pkg/ims/adapter"
	"github.com/molspect/imsbase/pkg/ims/adapter/database"
	"github.com/molspect/imsbase/pkg/ims/core/config"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	tx "github.com/molspect/imsbase/pkg/ims/core/tx"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
)

// SQLStore implements the repository.Store interface over a relational database.
type SQLStore struct {
	dbResolver coreAdapter.ResourceConnectionResolver
	// TxManager is the transaction manager for the database.
	TxManager tx.Manager
	// dbName is the name of the database connection used by this store (e.g., "metadata").
	dbName string
	// bulkChunkSize is the number of rows written per INSERT during bulk
	// replace operations.
	bulkChunkSize int
}

// NewSQLStore creates a new instance of SQLStore.
func NewSQLStore(
	dbResolver coreAdapter.ResourceConnectionResolver,
	txManager tx.Manager,
	dbName string,
	bulkChunkSize int,
) repository.Store {
	if bulkChunkSize <= 0 {
		bulkChunkSize = 500
	}
	return &SQLStore{
		dbResolver:    dbResolver,
		TxManager:     txManager,
		dbName:        dbName,
		bulkChunkSize: bulkChunkSize,
	}
}

// getDBConnection is a helper function to get the DBConnection used by the store.
// This is used for operations that do not require an active transaction
// (e.g., ExecuteQuery, Count, Pluck).
func (r *SQLStore) getDBConnection(ctx context.Context) (database.DBConnection, error) {
	// Use ResourceConnectionResolver to always get the latest ResourceConnection.
	connAsResource, err := r.dbResolver.ResolveConnection(ctx, r.dbName)
	if err != nil {
		return nil, exception.NewStoreError("SQLStore", fmt.Sprintf("Failed to resolve DB connection '%s'", r.dbName), err, false)
	}
	conn, ok := connAsResource.(database.DBConnection)
	if !ok {
		return nil, exception.NewStoreError("SQLStore", fmt.Sprintf("Resolved connection '%s' is not a database.DBConnection", r.dbName), nil, false)
	}
	return conn, nil
}

// getTxExecutor checks if a Tx exists in the context.
// If a transaction is found in the context, it returns the Tx (which implements
// tx.Executor); otherwise, it returns the DBConnection (which also implements
// tx.Executor). This is used for write operations (ExecuteUpdate, ExecuteUpsert).
func (r *SQLStore) getTxExecutor(ctx context.Context) (tx.Executor, error) {
	if t, ok := tx.FromContext(ctx); ok {
		return t, nil // If a transaction exists in the context, use it.
	}
	// If no transaction is found in the context, use the direct DBConnection.
	return r.getDBConnection(ctx)
}

// isTableNotExistError checks if the given error indicates that a table does
// not exist. Write paths go through tx.Executor, which does not expose the
// connection-level check, so the common patterns are matched here.
func isTableNotExistError(err error) bool {
	if err == nil {
		return false
	}
	errMsg := err.Error()
	return (strings.Contains(errMsg, "relation \"") && strings.Contains(errMsg, "\" does not exist")) || // PostgreSQL
		(strings.Contains(errMsg, "Error 1146") && strings.Contains(errMsg, "doesn't exist")) || // MySQL
		strings.Contains(errMsg, "no such table:") // SQLite
}

// Close implements repository.Store.
func (r *SQLStore) Close() error {
	// The underlying DBConnection is managed by the DBProvider and its lifecycle,
	// so it is not closed directly by the store.
	return nil
}

// Verify that SQLStore implements all embedded interfaces of repository.Store.
var _ repository.Store = (*SQLStore)(nil)

// StoreParams defines the dependencies required to create a NewStore.
type StoreParams struct {
	fx.In
	DBResolver coreAdapter.ResourceConnectionResolver
	TxManager  tx.Manager
	Cfg        *config.Config
}

// NewStore creates and returns a repository.Store instance.
// This function is intended to be used as an Fx provider.
func NewStore(p StoreParams) repository.Store {
	// Determine the database connection name for the store.
	// It defaults to "metadata" if not explicitly configured.
	dbName := p.Cfg.IMSBase.Store.DBRef
	if dbName == "" {
		dbName = "metadata"
	}

	return NewSQLStore(p.DBResolver, p.TxManager, dbName, p.Cfg.IMSBase.Store.BulkChunkSize)
}

// Module provides the SQL store to Fx.
var Module = fx.Options(
	fx.Provide(NewStore),
)
