package metrics

import (
	"context"

	"go.uber.org/fx"

	"github.com/molspect/imsbase/pkg/ims/core/config"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
)

// Module is an Fx module that provides PrometheusRecorder and OpenTelemetryTracer.
var Module = fx.Options(
	// Provide PrometheusRecorder as a metrics.MetricRecorder interface.
	fx.Provide(fx.Annotate(
		NewPrometheusRecorder,
		fx.As(new(metrics.MetricRecorder)),
	)),
	// Provide OpenTelemetryTracer as a metrics.Tracer interface, bound to the
	// application lifecycle for exporter shutdown.
	fx.Provide(fx.Annotate(
		newLifecycleTracer,
		fx.As(new(metrics.Tracer)),
	)),
)

func newLifecycleTracer(lc fx.Lifecycle, cfg *config.Config) (*OpenTelemetryTracer, error) {
	tracer, err := NewOpenTelemetryTracer(context.Background(), cfg)
	if err != nil {
		return nil, err
	}
	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return tracer.Shutdown(ctx)
		},
	})
	return tracer, nil
}
