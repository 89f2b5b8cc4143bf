// Package ledger implements the job ledger: creating analysis jobs, advancing
// their progress under concurrent writers, and transitioning them to terminal
// states.
package ledger

import (
	"context"
	"time"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	metrics "github.com/molspect/imsbase/pkg/ims/core/metrics"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// maxUpdateAttempts bounds how often a job mutation is retried after an
// optimistic locking conflict before giving up.
const maxUpdateAttempts = 5

// Service coordinates job lifecycle operations against the job ledger.
// Mutations use read-modify-write with optimistic locking and retry on
// conflict, so interleaved progress events from concurrent workers never lose
// updates.
type Service struct {
	store    repository.JobLedger
	recorder metrics.MetricRecorder
}

// NewService creates a ledger Service over the given job store.
func NewService(store repository.JobLedger, recorder metrics.MetricRecorder) *Service {
	return &Service{store: store, recorder: recorder}
}

// CreateJob registers a new unit of analysis work and returns it with its
// assigned ID. The job starts in the PENDING state with zero completed tasks.
func (s *Service) CreateJob(ctx context.Context, jobType, formulaID, datasetID, tasksTotal int) (*model.Job, error) {
	const op = "ledger.CreateJob"

	if tasksTotal < 0 {
		return nil, exception.NewStoreErrorf(op, "tasksTotal must not be negative, got %d", tasksTotal)
	}

	job := model.NewJob(jobType, formulaID, datasetID, tasksTotal)
	if err := s.store.SaveJob(ctx, job); err != nil {
		return nil, err
	}

	logger.Infof("Created job %d (type=%d, dataset=%d, tasks=%d).", job.ID, jobType, datasetID, tasksTotal)
	return job, nil
}

// Advance adds delta to a job's completed task count and updates its status
// text. The count only moves forward: negative deltas are rejected and the
// count is clamped at tasksTotal. Safe under interleaved progress events.
func (s *Service) Advance(ctx context.Context, jobID int64, delta int, status string) (*model.Job, error) {
	const op = "ledger.Advance"

	if delta < 0 {
		return nil, exception.NewStoreErrorf(op, "job %d: negative progress delta %d rejected", jobID, delta)
	}

	return s.mutate(ctx, op, jobID, func(job *model.Job) error {
		if job.State.IsTerminal() {
			return exception.NewStoreErrorf(op, "job %d is already %s", jobID, job.State)
		}

		applied := delta
		if job.TasksDone+applied > job.TasksTotal {
			applied = job.TasksTotal - job.TasksDone
		}
		job.TasksDone += applied
		job.Status = status

		if s.recorder != nil && applied > 0 {
			s.recorder.RecordJobProgress(ctx, job, applied)
		}
		return nil
	})
}

// Complete marks a job done and stamps its finish time. A completed-task
// count short of the total is logged as a warning but does not prevent
// completion.
func (s *Service) Complete(ctx context.Context, jobID int64) (*model.Job, error) {
	const op = "ledger.Complete"

	return s.mutate(ctx, op, jobID, func(job *model.Job) error {
		if job.State.IsTerminal() {
			return exception.NewStoreErrorf(op, "job %d is already %s", jobID, job.State)
		}
		if job.TasksDone != job.TasksTotal {
			logger.Warnf("Completing job %d with tasks_done=%d != tasks_total=%d.", jobID, job.TasksDone, job.TasksTotal)
		}

		now := time.Now()
		job.Done = true
		job.State = model.JobStateDone
		job.Finish = &now

		if s.recorder != nil {
			s.recorder.RecordJobEnd(ctx, job)
		}
		return nil
	})
}

// Fail transitions a job to the FAILED state with a failure status text.
func (s *Service) Fail(ctx context.Context, jobID int64, status string) (*model.Job, error) {
	const op = "ledger.Fail"
	return s.finish(ctx, op, jobID, model.JobStateFailed, status)
}

// Cancel transitions a job to the CANCELLED state.
func (s *Service) Cancel(ctx context.Context, jobID int64) (*model.Job, error) {
	const op = "ledger.Cancel"
	return s.finish(ctx, op, jobID, model.JobStateCancelled, "cancelled")
}

func (s *Service) finish(ctx context.Context, op string, jobID int64, state model.JobState, status string) (*model.Job, error) {
	return s.mutate(ctx, op, jobID, func(job *model.Job) error {
		if job.State.IsTerminal() {
			return exception.NewStoreErrorf(op, "job %d is already %s", jobID, job.State)
		}

		now := time.Now()
		// The legacy done flag stays true only for successfully completed jobs.
		job.Done = false
		job.State = state
		job.Status = status
		job.Finish = &now

		if s.recorder != nil {
			s.recorder.RecordJobEnd(ctx, job)
		}
		return nil
	})
}

// GetStatus returns a point-in-time snapshot of a job.
func (s *Service) GetStatus(ctx context.Context, jobID int64) (*model.JobSnapshot, error) {
	job, err := s.store.FindJobByID(ctx, jobID)
	if err != nil {
		return nil, err
	}
	snapshot := job.Snapshot()
	return &snapshot, nil
}

// mutate runs a read-modify-write cycle on a job, retrying on optimistic
// locking conflicts with a fresh read each attempt.
func (s *Service) mutate(ctx context.Context, op string, jobID int64, apply func(job *model.Job) error) (*model.Job, error) {
	var lastErr error
	for attempt := 0; attempt < maxUpdateAttempts; attempt++ {
		job, err := s.store.FindJobByID(ctx, jobID)
		if err != nil {
			return nil, err
		}

		if err := apply(job); err != nil {
			return nil, err
		}

		err = s.store.UpdateJob(ctx, job)
		if err == nil {
			return job, nil
		}
		if !exception.IsOptimisticLockingFailure(err) {
			return nil, err
		}

		lastErr = err
		if s.recorder != nil {
			s.recorder.RecordLockConflict(ctx, "jobs")
		}
		logger.Debugf("%s: job %d conflicted on update (attempt %d), retrying.", op, jobID, attempt+1)
	}
	return nil, exception.NewStoreError(op, "job update kept conflicting with concurrent writers", lastErr, true)
}
