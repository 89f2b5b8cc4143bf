package repository

import (
	"context"
	"errors"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

// ErrJobNotFound is the error returned when a Job is not found.
var ErrJobNotFound = errors.New("job not found")

// JobLedger defines operations for persisting and managing analysis job
// lifecycle metadata.
type JobLedger interface {
	// SaveJob persists a new Job and assigns its ID.
	SaveJob(ctx context.Context, job *model.Job) error

	// UpdateJob updates the state of an existing Job. Implementations enforce
	// optimistic locking on the job's Version column and return an
	// optimistic locking failure when a concurrent update won the race.
	UpdateJob(ctx context.Context, job *model.Job) error

	// FindJobByID finds a Job by its ID.
	FindJobByID(ctx context.Context, jobID int64) (*model.Job, error)

	// FindJobsByDataset finds all Jobs recorded against the given dataset.
	FindJobsByDataset(ctx context.Context, datasetID int) ([]*model.Job, error)

	// ClaimPendingJob atomically transitions one PENDING job to RUNNING and
	// returns it. Returns ErrJobNotFound when no pending job exists.
	ClaimPendingJob(ctx context.Context) (*model.Job, error)
}
