package export

import (
	"go.uber.org/fx"

	"github.com/molspect/imsbase/pkg/ims/adapter/storage"
	"github.com/molspect/imsbase/pkg/ims/core/config"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
)

// ExporterParams defines the dependencies required to construct the Exporter.
type ExporterParams struct {
	fx.In
	Store    repository.Store
	Resolver storage.StorageConnectionResolver
	Cfg      *config.Config
}

// NewExporterProvider creates the Exporter for Fx.
func NewExporterProvider(p ExporterParams) *Exporter {
	return NewExporter(p.Store, p.Resolver, p.Cfg.IMSBase.Export)
}

// Module provides the result exporter to Fx.
var Module = fx.Options(
	fx.Provide(NewExporterProvider),
)
