// Package tx provides an abstraction for transaction management in the store.
// It enables unified transaction control across different database backends.
package tx

import (
	"context"
	"database/sql"
)

// txContextKey is the context key under which an active transaction travels.
type txContextKey struct{}

// Executor is an interface that defines common write operations executable within a transaction.
// It is intended to be embedded in both DBConnection and Tx, allowing data operations
// to be performed in the same way regardless of the presence of a transaction.
type Executor interface {
	// ExecuteUpdate performs database write operations (INSERT, UPDATE, DELETE) on the specified model.
	//
	// model: A Go struct or slice containing the data to be saved or updated in the database.
	// operation: A string indicating the type of operation to be performed ("CREATE", "UPDATE", "DELETE").
	// tableName: The name of the target database table.
	// query: A key-value map for specifying conditions in UPDATE or DELETE operations.
	//        Keys are column names, values are corresponding values. Multiple entries are combined with AND.
	// Returns: The number of affected rows and any error that occurred during the operation.
	ExecuteUpdate(ctx context.Context, model interface{}, operation string, tableName string, query map[string]interface{}) (rowsAffected int64, err error)

	// ExecuteUpsert performs an UPSERT operation (INSERT OR REPLACE / ON CONFLICT DO UPDATE) on the database.
	//
	// model: A Go struct or slice containing the data to be inserted or updated in the database.
	// tableName: The name of the target database table.
	// conflictColumns: A list of column names used to detect conflicts.
	// updateColumns: A list of column names to be updated if a conflict occurs. If this list is nil
	//                or empty, conflicts will be treated as DO NOTHING.
	// Returns: The number of affected rows and any error that occurred during the operation.
	ExecuteUpsert(ctx context.Context, model interface{}, tableName string, conflictColumns []string, updateColumns []string) (rowsAffected int64, err error)
}

// Tx represents an ongoing database transaction.
type Tx interface {
	Executor // Embeds write operations executable within a transaction

	// Savepoint creates a new savepoint within the current transaction.
	Savepoint(name string) error

	// RollbackToSavepoint rolls back the transaction to the savepoint with the specified name.
	// This undoes changes made after the savepoint, but preserves changes made before it.
	RollbackToSavepoint(name string) error
}

// Manager is an interface that manages the lifecycle of database transactions
// (begin, commit, rollback). It abstracts transaction propagation and isolation
// level control.
type Manager interface {
	// Begin starts a new database transaction.
	// opts: Optional arguments specifying transaction options (e.g., isolation level, read-only flag).
	Begin(ctx context.Context, opts ...*sql.TxOptions) (Tx, error)
	// Commit commits the specified transaction, persisting all changes made within it.
	Commit(tx Tx) error
	// Rollback rolls back the specified transaction, undoing all changes made within it.
	Rollback(tx Tx) error
}

// WithTx returns a context carrying the given transaction. Repository write
// operations executed with this context join the transaction instead of
// running in auto-commit mode.
func WithTx(ctx context.Context, t Tx) context.Context {
	return context.WithValue(ctx, txContextKey{}, t)
}

// FromContext extracts the active transaction from the context, if any.
func FromContext(ctx context.Context) (Tx, bool) {
	t, ok := ctx.Value(txContextKey{}).(Tx)
	return t, ok
}

// Run executes fn within a transaction started on the given manager.
// The transaction is injected into the context passed to fn; it is committed
// when fn returns nil and rolled back otherwise.
func Run(ctx context.Context, mgr Manager, fn func(ctx context.Context) error) error {
	t, err := mgr.Begin(ctx)
	if err != nil {
		return err
	}
	if err := fn(WithTx(ctx, t)); err != nil {
		if rbErr := mgr.Rollback(t); rbErr != nil {
			return rbErr
		}
		return err
	}
	return mgr.Commit(t)
}
