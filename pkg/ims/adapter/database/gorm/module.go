package gorm

import (
	"go.uber.org/fx"

	"github.com/molspect/imsbase/pkg/ims/adapter/database"
	coreAdapter "github.com/molspect/imsbase/pkg/ims/adapter"
	config "github.com/molspect/imsbase/pkg/ims/core/config"
	tx "github.com/molspect/imsbase/pkg/ims/core/tx"
)

// Module exports the components of the gorm adapter package for dependency injection
// (excluding concrete DB Providers).
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewGormDBConnectionResolver,
		fx.As(new(database.DBConnectionResolver)),
		fx.As(new(coreAdapter.ResourceConnectionResolver)),
	)),
	// Provides a tx.Manager bound to the store's configured database connection.
	fx.Provide(func(resolver database.DBConnectionResolver, cfg *config.Config) tx.Manager {
		return NewGormTransactionManager(resolver, cfg.IMSBase.Store.DBRef)
	}),
)
