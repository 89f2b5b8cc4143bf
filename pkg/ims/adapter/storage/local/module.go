// Package local provides the Fx module for the local storage adapter.
package local

import (
	"go.uber.org/fx"

	storageAdapter "github.com/molspect/imsbase/pkg/ims/adapter/storage"
)

// Module is the Fx module for the Local storage adapter.
var Module = fx.Options(
	// Provide NewLocalProvider and tag it for Fx to collect into []storage.StorageProvider.
	fx.Provide(fx.Annotate(
		NewLocalProvider,
		fx.ResultTags(`group:"`+storageAdapter.StorageProviderGroup+`"`),
	)),
)
