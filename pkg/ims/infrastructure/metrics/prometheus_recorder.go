package metrics

import (
	"context"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// PrometheusRecorder is a Prometheus implementation of the metrics.MetricRecorder interface.
type PrometheusRecorder struct {
	registry *prometheus.Registry

	// Job Metrics
	jobDurationSeconds *prometheus.HistogramVec
	jobStateCounter    *prometheus.CounterVec
	jobTasksCounter    *prometheus.CounterVec

	// Store Metrics
	bulkLoadRows     *prometheus.CounterVec
	resultAppendRows *prometheus.CounterVec
	lockConflicts    *prometheus.CounterVec

	operationDurationSeconds *prometheus.HistogramVec
}

// NewPrometheusRecorder creates a new instance of PrometheusRecorder.
func NewPrometheusRecorder() metrics.MetricRecorder {
	registry := prometheus.NewRegistry()

	// Register Go standard metrics and process/OS metrics.
	registry.MustRegister(collectors.NewGoCollector())
	registry.MustRegister(collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))

	r := &PrometheusRecorder{
		registry: registry,
		jobDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ims_job_duration_seconds",
			Help:    "Duration of analysis job executions.",
			Buckets: prometheus.DefBuckets,
		}, []string{"job_type", "state"}),
		jobStateCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ims_job_state_total",
			Help: "Total number of job state transitions by state.",
		}, []string{"job_type", "state"}),
		jobTasksCounter: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ims_job_tasks_total",
			Help: "Total number of tasks completed across jobs.",
		}, []string{"job_type"}),
		bulkLoadRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ims_bulk_load_rows_total",
			Help: "Total rows written by bulk reference loads.",
		}, []string{"table"}),
		resultAppendRows: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ims_result_append_rows_total",
			Help: "Total result rows appended.",
		}, []string{"table"}),
		lockConflicts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ims_lock_conflicts_total",
			Help: "Total optimistic locking conflicts by table.",
		}, []string{"table"}),
		operationDurationSeconds: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "ims_operation_duration_seconds",
			Help:    "Duration of named store operations.",
			Buckets: prometheus.DefBuckets,
		}, []string{"operation"}),
	}

	// Register all metrics with the registry.
	registry.MustRegister(r.jobDurationSeconds)
	registry.MustRegister(r.jobStateCounter)
	registry.MustRegister(r.jobTasksCounter)
	registry.MustRegister(r.bulkLoadRows)
	registry.MustRegister(r.resultAppendRows)
	registry.MustRegister(r.lockConflicts)
	registry.MustRegister(r.operationDurationSeconds)

	return r
}

// GetRegistry returns the Prometheus registry.
func (r *PrometheusRecorder) GetRegistry() *prometheus.Registry {
	return r.registry
}

func jobTypeLabel(job *model.Job) string {
	return strconv.Itoa(job.Type)
}

// RecordJobStart records a job entering the RUNNING state.
func (r *PrometheusRecorder) RecordJobStart(ctx context.Context, job *model.Job) {
	r.jobStateCounter.WithLabelValues(jobTypeLabel(job), job.State.String()).Inc()
	logger.Debugf("Metrics: Job %d started.", job.ID)
}

// RecordJobEnd records a job reaching a terminal state.
func (r *PrometheusRecorder) RecordJobEnd(ctx context.Context, job *model.Job) {
	r.jobStateCounter.WithLabelValues(jobTypeLabel(job), job.State.String()).Inc()

	if job.Finish == nil {
		return
	}
	duration := job.Finish.Sub(job.Start).Seconds()
	r.jobDurationSeconds.WithLabelValues(jobTypeLabel(job), job.State.String()).Observe(duration)

	logger.Debugf("Metrics: Job %d ended with state %s. Duration: %.3fs", job.ID, job.State, duration)
}

// RecordJobProgress records a progress advance on a running job.
func (r *PrometheusRecorder) RecordJobProgress(ctx context.Context, job *model.Job, delta int) {
	if delta <= 0 {
		return
	}
	r.jobTasksCounter.WithLabelValues(jobTypeLabel(job)).Add(float64(delta))
}

// RecordBulkLoad records the number of rows written by a bulk reference load.
func (r *PrometheusRecorder) RecordBulkLoad(ctx context.Context, table string, rows int) {
	if rows <= 0 {
		return
	}
	r.bulkLoadRows.WithLabelValues(table).Add(float64(rows))
}

// RecordResultAppend records the number of result rows appended for a job.
func (r *PrometheusRecorder) RecordResultAppend(ctx context.Context, table string, rows int) {
	if rows <= 0 {
		return
	}
	r.resultAppendRows.WithLabelValues(table).Add(float64(rows))
}

// RecordLockConflict records an optimistic locking conflict on a table.
func (r *PrometheusRecorder) RecordLockConflict(ctx context.Context, table string) {
	r.lockConflicts.WithLabelValues(table).Inc()
}

// RecordDuration records the execution time of a specific operation.
func (r *PrometheusRecorder) RecordDuration(ctx context.Context, name string, duration time.Duration, tags map[string]string) {
	r.operationDurationSeconds.WithLabelValues(name).Observe(duration.Seconds())
}

var _ metrics.MetricRecorder = (*PrometheusRecorder)(nil)
