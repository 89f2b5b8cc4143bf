// Package gcs provides the Fx module for the Google Cloud Storage adapter.
package gcs

import (
	"go.uber.org/fx"

	storageAdapter "github.com/molspect/imsbase/pkg/ims/adapter/storage"
)

// Module is the Fx module for the GCS storage adapter.
var Module = fx.Options(
	// Provide NewGCSProvider and tag it for Fx to collect into []storage.StorageProvider.
	fx.Provide(fx.Annotate(
		NewGCSProvider,
		fx.ResultTags(`group:"`+storageAdapter.StorageProviderGroup+`"`),
	)),
)
