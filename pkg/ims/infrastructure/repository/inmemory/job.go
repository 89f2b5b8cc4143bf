package inmemory

import (
	"context"
	"sort"
	"time"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
)

// SaveJob persists a new job and assigns its ID.
func (r *InMemoryStore) SaveJob(ctx context.Context, job *model.Job) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextJobID++
	job.ID = r.nextJobID

	cloned := *job
	r.jobs[job.ID] = &cloned
	return nil
}

// UpdateJob updates an existing job with optimistic locking. The update only
// succeeds when the caller holds the version currently stored; otherwise an
// optimistic locking failure is returned and the caller must re-read the job.
func (r *InMemoryStore) UpdateJob(ctx context.Context, job *model.Job) error {
	const op = "InMemoryStore.UpdateJob"

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.jobs[job.ID]
	if !ok {
		return repository.ErrJobNotFound
	}
	if stored.Version != job.Version {
		return exception.NewOptimisticLockingFailure(op,
			"job was modified concurrently", nil)
	}

	job.Version++
	cloned := *job
	r.jobs[job.ID] = &cloned
	return nil
}

// FindJobByID finds a job by its ID.
func (r *InMemoryStore) FindJobByID(ctx context.Context, jobID int64) (*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	job, ok := r.jobs[jobID]
	if !ok {
		return nil, repository.ErrJobNotFound
	}
	// Deep copy to prevent external modification of internal state.
	cloned := *job
	return &cloned, nil
}

// FindJobsByDataset finds all jobs of a dataset, ordered by ID.
func (r *InMemoryStore) FindJobsByDataset(ctx context.Context, datasetID int) ([]*model.Job, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var jobs []*model.Job
	for _, job := range r.jobs {
		if job.DatasetID == datasetID {
			cloned := *job
			jobs = append(jobs, &cloned)
		}
	}
	sort.Slice(jobs, func(i, j int) bool { return jobs[i].ID < jobs[j].ID })
	return jobs, nil
}

// ClaimPendingJob atomically moves the oldest pending job to the running
// state and returns it.
func (r *InMemoryStore) ClaimPendingJob(ctx context.Context) (*model.Job, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var oldest *model.Job
	for _, job := range r.jobs {
		if job.State != model.JobStatePending {
			continue
		}
		if oldest == nil || job.ID < oldest.ID {
			oldest = job
		}
	}
	if oldest == nil {
		return nil, repository.ErrJobNotFound
	}

	oldest.State = model.JobStateRunning
	oldest.Start = time.Now()
	oldest.Version++

	cloned := *oldest
	return &cloned, nil
}
