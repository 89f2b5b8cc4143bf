package worker

import (
	"context"
	"time"

	"go.uber.org/fx"

	"github.com/molspect/imsbase/pkg/ims/core/config"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
	"github.com/molspect/imsbase/pkg/ims/ledger"
)

// PoolParams defines the dependencies required to construct the worker Pool.
type PoolParams struct {
	fx.In
	Store     repository.Store
	Ledger    *ledger.Service
	Processor JobProcessor           `optional:"true"`
	Recorder  metrics.MetricRecorder `optional:"true"`
	Tracer    metrics.Tracer         `optional:"true"`
	Cfg       *config.Config
}

// NewPoolProvider creates the worker Pool for Fx and binds it to the
// application lifecycle.
func NewPoolProvider(lc fx.Lifecycle, p PoolParams) *Pool {
	if p.Recorder == nil {
		p.Recorder = metrics.NewNoOpMetricRecorder()
	}
	if p.Tracer == nil {
		p.Tracer = metrics.NewNoOpTracer()
	}
	wc := p.Cfg.IMSBase.Worker
	pool := NewPool(
		p.Store,
		p.Ledger,
		p.Processor,
		p.Recorder,
		p.Tracer,
		wc.PoolSize,
		time.Duration(wc.PollIntervalSeconds)*time.Second,
	)

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			return pool.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			return pool.Stop(ctx)
		},
	})
	return pool
}

// Module provides the worker pool to Fx.
var Module = fx.Options(
	fx.Provide(NewPoolProvider),
)
