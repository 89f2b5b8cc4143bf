package test

import (
	"context"

	coreadapter "github.com/molspect/imsbase/pkg/ims/adapter"
	dbadapter "github.com/molspect/imsbase/pkg/ims/adapter/database"
)

// testSingleConnectionResolver is a DBConnectionResolver for tests that always
// returns a single, predefined DBConnection.
type testSingleConnectionResolver struct {
	conn dbadapter.DBConnection
}

// ResolveDBConnection implements the dbadapter.DBConnectionResolver interface.
// It always returns the pre-configured DBConnection.
func (r *testSingleConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (dbadapter.DBConnection, error) {
	return r.conn, nil
}

// ResolveConnection implements the coreadapter.ResourceConnectionResolver interface.
// It always returns the pre-configured DBConnection.
func (r *testSingleConnectionResolver) ResolveConnection(ctx context.Context, name string) (coreadapter.ResourceConnection, error) {
	return r.conn, nil
}

// NewTestSingleConnectionResolver creates a resolver that always returns the
// given connection, for tests that need a predictable DBConnectionResolver.
func NewTestSingleConnectionResolver(conn dbadapter.DBConnection) dbadapter.DBConnectionResolver {
	return &testSingleConnectionResolver{conn: conn}
}

var _ dbadapter.DBConnectionResolver = (*testSingleConnectionResolver)(nil)
