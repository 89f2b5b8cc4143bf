package gorm

import (
	"context"
	"fmt"

	"go.uber.org/fx"

	"github.com/molspect/imsbase/pkg/ims/adapter/database"
	coreAdapter "github.com/molspect/imsbase/pkg/ims/adapter"
	config "github.com/molspect/imsbase/pkg/ims/core/config"
	"github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// GormDBConnectionResolver is the GORM implementation of database.DBConnectionResolver.
type GormDBConnectionResolver struct {
	dbProviders map[string]database.DBProvider // A map of DBProviders, keyed by database type.
	cfg         *config.Config
}

// ResolverParams defines the dependencies for NewGormDBConnectionResolver.
type ResolverParams struct {
	fx.In
	DBProviders []database.DBProvider `group:"db_providers"` // All DBProviders provided by Fx as a slice.
	Cfg         *config.Config
}

// NewGormDBConnectionResolver creates a new GormDBConnectionResolver.
func NewGormDBConnectionResolver(p ResolverParams) *GormDBConnectionResolver {
	// Converts the received slice of DBProviders into a map for easier lookup.
	providerMap := make(map[string]database.DBProvider)
	for _, provider := range p.DBProviders {
		providerMap[provider.Type()] = provider
	}

	return &GormDBConnectionResolver{
		dbProviders: providerMap,
		cfg:         p.Cfg,
	}
}

// ResolveDBConnection resolves a database connection with the specified name.
// It attempts to reconnect if the connection is closed or invalid.
func (r *GormDBConnectionResolver) ResolveDBConnection(ctx context.Context, name string) (database.DBConnection, error) {
	// 1. Get DB type from configuration.
	rawConfig, ok := r.cfg.DatabaseConfigs()[name]
	if !ok {
		return nil, fmt.Errorf("DBConnectionResolver: database configuration '%s' not found under 'adapter.database' configs", name)
	}
	dbConfig, err := decodeDatabaseConfig(rawConfig)
	if err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: failed to decode database config for '%s': %w", name, err)
	}

	// 2. Select the appropriate DBProvider.
	provider, ok := r.dbProviders[dbConfig.Type]
	if !ok {
		return nil, fmt.Errorf("DBConnectionResolver: DBProvider for type '%s' not found for connection '%s'", dbConfig.Type, name)
	}

	// 3. Get connection from DBProvider.
	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("DBConnectionResolver: Failed to get connection '%s': %w", name, err)
	}

	// 4. Check connection health and attempt to reconnect if necessary.
	sqlDB, getDBErr := conn.GetSQLDB()
	if getDBErr != nil {
		logger.Debugf("DBConnectionResolver: Failed to get underlying *sql.DB for connection '%s' (possibly a dummy connection): %v", name, getDBErr)
		return conn, nil
	}

	pingErr := sqlDB.PingContext(ctx)
	if pingErr != nil {
		logger.Warnf("DBConnectionResolver: Connection '%s' is invalid (%v). Attempting to reconnect.", name, pingErr)
		reconnectedConn, reconnectErr := provider.ForceReconnect(name)
		if reconnectErr != nil {
			return nil, fmt.Errorf("DBConnectionResolver: Failed to reconnect connection '%s': %w", name, reconnectErr)
		}
		logger.Infof("DBConnectionResolver: Successfully reconnected connection '%s'.", name)
		return reconnectedConn, nil
	}

	return conn, nil
}

// ResolveConnection is part of the coreAdapter.ResourceConnectionResolver interface.
// It is implemented by calling ResolveDBConnection.
func (r *GormDBConnectionResolver) ResolveConnection(ctx context.Context, name string) (coreAdapter.ResourceConnection, error) {
	return r.ResolveDBConnection(ctx, name)
}
