package sql

import (
	"context"
	"fmt"
	"time"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	logger "github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

// maxClaimAttempts bounds how often ClaimPendingJob retries after losing a
// claim race to another worker before telling the caller to poll again.
const maxClaimAttempts = 5

// --- JobLedger implementation ---

func (r *SQLStore) SaveJob(ctx context.Context, j *model.Job) error {
	const op = "SQLStore.SaveJob"
	entity := fromDomainJob(j)

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	_, err = executor.ExecuteUpdate(ctx, entity, "CREATE", entity.TableName(), nil)
	if err != nil {
		return exception.NewStoreError(op, fmt.Sprintf("failed to save job (type=%d, dataset=%d)", j.Type, j.DatasetID), err, true)
	}

	// The database assigns the id on insert.
	j.ID = entity.ID
	logger.Debugf("%s: saved job id=%d state=%s", op, j.ID, j.State)
	return nil
}

// UpdateJob persists the job with optimistic locking. The job's version is
// incremented and the UPDATE is predicated on the version the caller read; a
// concurrent writer makes the predicate miss and the call fails with an
// optimistic locking error, leaving the in-memory version untouched.
func (r *SQLStore) UpdateJob(ctx context.Context, j *model.Job) error {
	const op = "SQLStore.UpdateJob"

	executor, err := r.getTxExecutor(ctx)
	if err != nil {
		return err
	}

	originalVersion := j.Version
	j.Version++
	entity := fromDomainJob(j)

	rowsAffected, err := executor.ExecuteUpdate(
		ctx,
		entity,
		"UPDATE",
		entity.TableName(),
		map[string]interface{}{"id": j.ID, "version": originalVersion},
	)
	if err != nil {
		j.Version = originalVersion
		return exception.NewStoreError(op, fmt.Sprintf("failed to update job %d", j.ID), err, true)
	}
	if rowsAffected == 0 {
		j.Version = originalVersion
		return exception.NewOptimisticLockingFailure(op,
			fmt.Sprintf("job %d was modified concurrently (expected version %d)", j.ID, originalVersion), nil)
	}
	return nil
}

func (r *SQLStore) FindJobByID(ctx context.Context, id int64) (*model.Job, error) {
	const op = "SQLStore.FindJobByID"
	var entities []JobEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"id": id}, "", 1)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return nil, repository.ErrJobNotFound
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find job %d", id), err, true)
	}

	if len(entities) == 0 {
		return nil, repository.ErrJobNotFound
	}

	return toDomainJob(&entities[0]), nil
}

func (r *SQLStore) FindJobsByDataset(ctx context.Context, datasetID int) ([]*model.Job, error) {
	const op = "SQLStore.FindJobsByDataset"
	var entities []JobEntity

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	err = conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"dataset_id": datasetID}, "id asc", 0)
	if err != nil {
		if conn.IsTableNotExistError(err) {
			return []*model.Job{}, nil
		}
		return nil, exception.NewStoreError(op, fmt.Sprintf("failed to find jobs of dataset %d", datasetID), err, true)
	}

	jobs := make([]*model.Job, len(entities))
	for i := range entities {
		jobs[i] = toDomainJob(&entities[i])
	}
	return jobs, nil
}

// ClaimPendingJob atomically moves the oldest pending job to the running
// state and returns it. The claim is a compare-and-swap on the job's version,
// so two workers polling the same table never obtain the same job. When no
// pending job exists (or every candidate was claimed by someone else first)
// it returns ErrJobNotFound.
func (r *SQLStore) ClaimPendingJob(ctx context.Context) (*model.Job, error) {
	const op = "SQLStore.ClaimPendingJob"

	conn, err := r.getDBConnection(ctx)
	if err != nil {
		return nil, err
	}

	for attempt := 0; attempt < maxClaimAttempts; attempt++ {
		var entities []JobEntity
		err := conn.ExecuteQueryAdvanced(ctx, &entities, map[string]interface{}{"state": model.JobStatePending}, "id asc", 1)
		if err != nil {
			if conn.IsTableNotExistError(err) {
				return nil, repository.ErrJobNotFound
			}
			return nil, exception.NewStoreError(op, "failed to look up pending jobs", err, true)
		}
		if len(entities) == 0 {
			return nil, repository.ErrJobNotFound
		}

		j := toDomainJob(&entities[0])
		j.State = model.JobStateRunning
		now := time.Now()
		j.Start = now

		if err := r.UpdateJob(ctx, j); err != nil {
			if exception.IsOptimisticLockingFailure(err) {
				logger.Debugf("%s: lost claim race for job %d, retrying", op, j.ID)
				continue
			}
			return nil, err
		}
		return j, nil
	}

	return nil, repository.ErrJobNotFound
}
