package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"

	"github.com/molspect/imsbase/pkg/ims/core/config"
	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// OpenTelemetryTracer is an implementation of metrics.Tracer using OpenTelemetry.
// When tracing is enabled in the configuration, spans are exported over OTLP/gRPC;
// otherwise the spans come from a provider without an exporter and are dropped.
type OpenTelemetryTracer struct {
	tracer   trace.Tracer
	provider *sdktrace.TracerProvider
}

// NewOpenTelemetryTracer creates a new instance of OpenTelemetryTracer from the
// tracing section of the application configuration.
func NewOpenTelemetryTracer(ctx context.Context, cfg *config.Config) (*OpenTelemetryTracer, error) {
	tc := cfg.IMSBase.Tracing

	if !tc.Enabled {
		return &OpenTelemetryTracer{tracer: otel.Tracer(tc.ServiceName)}, nil
	}

	exporter, err := otlptracegrpc.New(ctx,
		otlptracegrpc.WithEndpoint(tc.Endpoint),
		otlptracegrpc.WithInsecure(),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP trace exporter: %w", err)
	}

	provider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(resource.NewSchemaless(
			attribute.String("service.name", tc.ServiceName),
		)),
	)
	otel.SetTracerProvider(provider)

	logger.Infof("OpenTelemetry tracing enabled (endpoint: %s)", tc.Endpoint)
	return &OpenTelemetryTracer{
		tracer:   provider.Tracer(tc.ServiceName),
		provider: provider,
	}, nil
}

// Shutdown flushes pending spans and shuts the exporter down.
func (t *OpenTelemetryTracer) Shutdown(ctx context.Context) error {
	if t.provider == nil {
		return nil
	}
	return t.provider.Shutdown(ctx)
}

// StartJobSpan starts a new span covering a job's processing.
func (t *OpenTelemetryTracer) StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, "job.process", trace.WithAttributes(
		attribute.Int64("job.id", job.ID),
		attribute.Int("job.type", job.Type),
		attribute.Int("job.dataset_id", job.DatasetID),
	))
	return ctx, func() { span.End() }
}

// StartOperationSpan starts a new span for a named store operation.
func (t *OpenTelemetryTracer) StartOperationSpan(ctx context.Context, name string) (context.Context, func()) {
	ctx, span := t.tracer.Start(ctx, name)
	return ctx, func() { span.End() }
}

// RecordError records an error in the current span.
func (t *OpenTelemetryTracer) RecordError(ctx context.Context, module string, err error) {
	span := trace.SpanFromContext(ctx)
	span.RecordError(err)
	span.SetStatus(codes.Error, module)
}

// RecordEvent records an event in the current span.
func (t *OpenTelemetryTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
	span := trace.SpanFromContext(ctx)
	span.AddEvent(name, trace.WithAttributes(toAttributes(attributes)...))
}

func toAttributes(m map[string]interface{}) []attribute.KeyValue {
	attrs := make([]attribute.KeyValue, 0, len(m))
	for k, v := range m {
		switch val := v.(type) {
		case string:
			attrs = append(attrs, attribute.String(k, val))
		case int:
			attrs = append(attrs, attribute.Int(k, val))
		case int64:
			attrs = append(attrs, attribute.Int64(k, val))
		case float64:
			attrs = append(attrs, attribute.Float64(k, val))
		case bool:
			attrs = append(attrs, attribute.Bool(k, val))
		default:
			attrs = append(attrs, attribute.String(k, fmt.Sprint(val)))
		}
	}
	return attrs
}

var _ metrics.Tracer = (*OpenTelemetryTracer)(nil)
