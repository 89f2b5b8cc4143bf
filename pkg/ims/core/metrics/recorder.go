package metrics

import (
	"context"
	"time"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// MetricRecorder is an abstract interface for recording metrics related to
// store and job activity.
//
// This interface provides a standardized way to record job lifecycle events,
// bulk load volumes and result appends, facilitating integration with
// different metrics backends (e.g., Prometheus).
type MetricRecorder interface {
	// RecordJobStart records a job entering the RUNNING state.
	RecordJobStart(ctx context.Context, job *model.Job)

	// RecordJobEnd records a job reaching a terminal state.
	RecordJobEnd(ctx context.Context, job *model.Job)

	// RecordJobProgress records a progress advance on a running job.
	RecordJobProgress(ctx context.Context, job *model.Job, delta int)

	// RecordBulkLoad records the number of rows written by a bulk reference load.
	RecordBulkLoad(ctx context.Context, table string, rows int)

	// RecordResultAppend records the number of result rows appended for a job.
	RecordResultAppend(ctx context.Context, table string, rows int)

	// RecordLockConflict records an optimistic locking conflict on a table.
	RecordLockConflict(ctx context.Context, table string)

	// RecordDuration records the duration of a named operation with optional tags.
	RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string)
}

// Tracer is an abstract interface for distributed tracing of store operations.
type Tracer interface {
	// StartJobSpan starts a span covering a job's processing. The returned
	// function ends the span.
	StartJobSpan(ctx context.Context, job *model.Job) (context.Context, func())

	// StartOperationSpan starts a span for a named store operation.
	StartOperationSpan(ctx context.Context, name string) (context.Context, func())

	// RecordError records an error in the current span.
	RecordError(ctx context.Context, module string, err error)

	// RecordEvent records an event in the current span.
	RecordEvent(ctx context.Context, name string, attributes map[string]interface{})
}
