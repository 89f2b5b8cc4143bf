// Package storage defines the common interfaces for various storage adapters.
// These interfaces abstract storage operations, allowing the store to interact
// with different storage backends (e.g., GCS, local file system) through a
// unified API.
package storage

import (
	"context"
	"io"

	coreAdapter "github.com/molspect/imsbase/pkg/ims/adapter"
)

// StorageExecutor defines generic storage operations.
// It is embedded into StorageConnection to provide concrete storage functionalities.
type StorageExecutor interface {
	// Upload uploads data to the specified bucket and object name.
	// 'data' is the stream of data to upload. 'contentType' is the MIME type of the data.
	Upload(ctx context.Context, bucket, objectName string, data io.Reader, contentType string) error
	// Download downloads data from the specified bucket and object name.
	// It returns a ReadCloser which must be closed by the caller after use.
	Download(ctx context.Context, bucket, objectName string) (io.ReadCloser, error)
	// ListObjects lists objects within the specified bucket and prefix.
	// The 'fn' callback function is called for each object name found, allowing for
	// efficient processing of large numbers of objects without loading all into memory.
	ListObjects(ctx context.Context, bucket, prefix string, fn func(objectName string) error) error
	// DeleteObject deletes the specified object from the bucket.
	DeleteObject(ctx context.Context, bucket, objectName string) error
}

// StorageConnection represents a generic data storage connection.
// It embeds coreAdapter.ResourceConnection and StorageExecutor to provide both
// resource connection capabilities and specific storage operations.
type StorageConnection interface {
	coreAdapter.ResourceConnection // Inherits Close(), Type(), Name()
	StorageExecutor                // Inherits Upload(), Download(), ListObjects(), DeleteObject()
}

// StorageProvider manages the acquisition and lifecycle of data storage connections.
type StorageProvider interface {
	// GetConnection retrieves a StorageConnection with the specified name.
	GetConnection(name string) (StorageConnection, error)
	// CloseAll closes all connections managed by this provider.
	CloseAll() error
	// Type returns the storage type handled by this provider (e.g., "local", "gcs").
	Type() string
	// ForceReconnect forces the closure and re-establishment of an existing connection with the specified name.
	ForceReconnect(name string) (StorageConnection, error)
}

// StorageConnectionResolver resolves data storage connection instances by name.
// It embeds coreAdapter.ResourceConnectionResolver to provide generic resource
// resolution capabilities.
type StorageConnectionResolver interface {
	coreAdapter.ResourceConnectionResolver // Inherits ResolveConnection()

	// ResolveStorageConnection resolves a StorageConnection instance by name.
	// This method is responsible for ensuring that the returned connection is
	// valid and re-established if necessary.
	ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error)
}

// StorageProviderGroup is an Fx group name used to collect all StorageProvider implementations.
const StorageProviderGroup = "storage_providers"
