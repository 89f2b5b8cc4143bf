// Package inmemory provides an in-memory implementation of the Store interface.
// This module integrates the in-memory store into the application's dependency graph using Fx.
package inmemory

import (
	"go.uber.org/fx"

	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
)

// Module is an Fx module that provides InMemoryStore as a repository.Store interface.
var Module = fx.Options(
	fx.Provide(
		fx.Annotate(
			NewInMemoryStore,
			fx.As(new(repository.Store)),
		),
	),
)
