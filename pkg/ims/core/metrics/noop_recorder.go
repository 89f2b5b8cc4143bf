package metrics

import (
	"context"
	"time"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// NoOpMetricRecorder is an implementation of MetricRecorder that does nothing.
// It is used when metrics are disabled or during testing.
type NoOpMetricRecorder struct{}

// NewNoOpMetricRecorder creates a new instance of NoOpMetricRecorder.
func NewNoOpMetricRecorder() MetricRecorder {
	return &NoOpMetricRecorder{}
}

// RecordJobStart does nothing.
func (r *NoOpMetricRecorder) RecordJobStart(ctx context.Context, job *model.Job) {}

// RecordJobEnd does nothing.
func (r *NoOpMetricRecorder) RecordJobEnd(ctx context.Context, job *model.Job) {}

// RecordJobProgress does nothing.
func (r *NoOpMetricRecorder) RecordJobProgress(ctx context.Context, job *model.Job, delta int) {}

// RecordBulkLoad does nothing.
func (r *NoOpMetricRecorder) RecordBulkLoad(ctx context.Context, table string, rows int) {}

// RecordResultAppend does nothing.
func (r *NoOpMetricRecorder) RecordResultAppend(ctx context.Context, table string, rows int) {}

// RecordLockConflict does nothing.
func (r *NoOpMetricRecorder) RecordLockConflict(ctx context.Context, table string) {}

// RecordDuration does nothing.
func (r *NoOpMetricRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
}

var _ MetricRecorder = (*NoOpMetricRecorder)(nil)

// --- NoOpTracer ---

// NoOpTracer is an implementation of Tracer that does nothing.
type NoOpTracer struct{}

// NewNoOpTracer creates a new instance of NoOpTracer.
func NewNoOpTracer() Tracer {
	return &NoOpTracer{}
}

// StartJobSpan returns the context unchanged.
func (t *NoOpTracer) StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func()) {
	return ctx, func() {}
}

// StartOperationSpan returns the context unchanged.
func (t *NoOpTracer) StartOperationSpan(ctx context.Context, name string) (context.Context, func()) {
	return ctx, func() {}
}

// RecordError does nothing.
func (t *NoOpTracer) RecordError(ctx context.Context, module string, err error) {}

// RecordEvent does nothing.
func (t *NoOpTracer) RecordEvent(ctx context.Context, name string, attributes map[string]interface{}) {
}

var _ Tracer = (*NoOpTracer)(nil)
