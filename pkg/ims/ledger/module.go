package ledger

import (
	"go.uber.org/fx"

	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
)

// ServiceParams defines the dependencies required to construct the ledger Service.
type ServiceParams struct {
	fx.In
	Store    repository.Store
	Recorder metrics.MetricRecorder `optional:"true"`
}

// NewServiceProvider creates the ledger Service for Fx.
func NewServiceProvider(p ServiceParams) *Service {
	if p.Recorder == nil {
		p.Recorder = metrics.NewNoOpMetricRecorder()
	}
	return NewService(p.Store, p.Recorder)
}

// Module provides the job ledger service to Fx.
var Module = fx.Options(
	fx.Provide(NewServiceProvider),
)
