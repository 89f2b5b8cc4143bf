package storage

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/fx"

	coreAdapter "github.com/molspect/imsbase/pkg/ims/adapter"
	coreConfig "github.com/molspect/imsbase/pkg/ims/core/config"
)

// ConnectionResolver implements StorageConnectionResolver over a set of
// StorageProviders keyed by their type.
type ConnectionResolver struct {
	providers map[string]StorageProvider
	cfg       *coreConfig.Config
}

// ResolverParams defines the dependencies for NewConnectionResolver.
type ResolverParams struct {
	fx.In
	Providers []StorageProvider `group:"storage_providers"` // All StorageProviders provided by Fx as a slice.
	Cfg       *coreConfig.Config
}

// NewConnectionResolver creates a new ConnectionResolver.
func NewConnectionResolver(p ResolverParams) *ConnectionResolver {
	providerMap := make(map[string]StorageProvider)
	for _, provider := range p.Providers {
		providerMap[provider.Type()] = provider
	}

	return &ConnectionResolver{
		providers: providerMap,
		cfg:       p.Cfg,
	}
}

// ResolveConnection resolves a generic resource connection by name.
func (r *ConnectionResolver) ResolveConnection(ctx context.Context, name string) (coreAdapter.ResourceConnection, error) {
	return r.ResolveStorageConnection(ctx, name)
}

// ResolveStorageConnection resolves a StorageConnection instance by name.
// The storage type is read from the named configuration entry, and the
// connection is obtained from the provider registered for that type.
func (r *ConnectionResolver) ResolveStorageConnection(ctx context.Context, name string) (StorageConnection, error) {
	namedConfig, ok := r.cfg.StorageConfigs()[name]
	if !ok {
		return nil, fmt.Errorf("storage connection '%s' not found in configuration", name)
	}

	var tempCfg struct {
		Type string `yaml:"type"`
	}
	decoderConfig := &mapstructure.DecoderConfig{
		Result:  &tempCfg,
		TagName: "yaml",
	}
	decoder, err := mapstructure.NewDecoder(decoderConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create decoder for storage config '%s': %w", name, err)
	}
	if err := decoder.Decode(namedConfig); err != nil {
		return nil, fmt.Errorf("failed to decode storage type for '%s': %w", name, err)
	}

	provider, ok := r.providers[tempCfg.Type]
	if !ok {
		return nil, fmt.Errorf("no storage provider found for type '%s' (connection '%s')", tempCfg.Type, name)
	}

	conn, err := provider.GetConnection(name)
	if err != nil {
		return nil, fmt.Errorf("failed to get storage connection '%s' from provider '%s': %w", name, tempCfg.Type, err)
	}
	return conn, nil
}

// Module provides the generic storage connection resolver.
var Module = fx.Options(
	fx.Provide(fx.Annotate(
		NewConnectionResolver,
		fx.As(new(StorageConnectionResolver)),
	)),
)
