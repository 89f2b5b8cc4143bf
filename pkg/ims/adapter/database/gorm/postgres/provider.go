// Package postgres provides a GORM DBProvider implementation for PostgreSQL databases.
package postgres

import (
	"fmt"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	dbconfig "github.com/molspect/imsbase/pkg/ims/adapter/database/config"
	"github.com/molspect/imsbase/pkg/ims/adapter/database"
	gormadapter "github.com/molspect/imsbase/pkg/ims/adapter/database/gorm"
	"github.com/molspect/imsbase/pkg/ims/core/config"
)

// init registers the PostgreSQL dialector factory with the GORM adapter.
// It allows the gormadapter to create PostgreSQL-specific gorm.Dialector instances
// based on the provided dbconfig.DatabaseConfig.
func init() {
	gormadapter.RegisterDialector("postgres", func(cfg dbconfig.DatabaseConfig) (gorm.Dialector, error) {
		return postgres.Open(ConnectionString(cfg)), nil
	})
}

// PostgresDBProvider implements database.DBProvider for PostgreSQL connections.
type PostgresDBProvider struct {
	*gormadapter.BaseProvider
}

// ConnectionString generates the DSN (Data Source Name) for PostgreSQL connections.
func ConnectionString(c dbconfig.DatabaseConfig) string {
	// Adjust to the DSN format expected by GORM (gorm.io/driver/postgres)
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.Sslmode)
}

// NewProvider creates a new database.DBProvider for PostgreSQL.
// This function is intended to be used with fx.Provide.
func NewProvider(cfg *config.Config) database.DBProvider {
	return &PostgresDBProvider{BaseProvider: gormadapter.NewBaseProvider(cfg, "postgres")}
}
