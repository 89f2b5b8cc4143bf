package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	"github.com/molspect/imsbase/pkg/ims/infrastructure/repository/inmemory"
	"github.com/molspect/imsbase/pkg/ims/ledger"
	"github.com/molspect/imsbase/pkg/ims/worker"
)

// countingProcessor advances every claimed job to its full task count and
// optionally fails deterministically.
type countingProcessor struct {
	failWith error
	done     chan int64
}

func (p *countingProcessor) Process(ctx context.Context, job *model.Job, svc *ledger.Service) error {
	defer func() { p.done <- job.ID }()
	if p.failWith != nil {
		return p.failWith
	}
	_, err := svc.Advance(ctx, job.ID, job.TasksTotal, "processed")
	return err
}

func waitForJob(t *testing.T, done chan int64, jobID int64) {
	t.Helper()
	select {
	case id := <-done:
		assert.Equal(t, jobID, id)
	case <-time.After(5 * time.Second):
		t.Fatal("timed out waiting for the worker to pick up the job")
	}
}

// waitForTerminal polls until the job reaches a terminal state; the worker
// finishes the job through the ledger after Process returns.
func waitForTerminal(t *testing.T, svc *ledger.Service, jobID int64) model.JobSnapshot {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for time.Now().Before(deadline) {
		snapshot, err := svc.GetStatus(context.Background(), jobID)
		require.NoError(t, err)
		if snapshot.State.IsTerminal() {
			return *snapshot
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Fatal("job never reached a terminal state")
	return model.JobSnapshot{}
}

func TestPool_ProcessesJobToCompletion(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	svc := ledger.NewService(store, nil)
	processor := &countingProcessor{done: make(chan int64, 1)}
	pool := worker.NewPool(store, svc, processor, nil, nil, 1, 10*time.Millisecond)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, 0, 1, 1, 4)
	require.NoError(t, err)

	require.NoError(t, pool.Start(ctx))
	defer func() { require.NoError(t, pool.Stop(ctx)) }()

	waitForJob(t, processor.done, job.ID)
	snapshot := waitForTerminal(t, svc, job.ID)

	assert.Equal(t, model.JobStateDone, snapshot.State)
	assert.True(t, snapshot.Done)
	assert.Equal(t, 4, snapshot.TasksDone)
	require.NotNil(t, snapshot.Finish)
}

func TestPool_FailingProcessorMarksJobFailed(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	svc := ledger.NewService(store, nil)
	processor := &countingProcessor{
		failWith: errors.New("peak extraction blew up"),
		done:     make(chan int64, 1),
	}
	pool := worker.NewPool(store, svc, processor, nil, nil, 1, 10*time.Millisecond)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, 0, 1, 1, 4)
	require.NoError(t, err)

	require.NoError(t, pool.Start(ctx))
	defer func() { require.NoError(t, pool.Stop(ctx)) }()

	waitForJob(t, processor.done, job.ID)
	snapshot := waitForTerminal(t, svc, job.ID)

	assert.Equal(t, model.JobStateFailed, snapshot.State)
	assert.False(t, snapshot.Done)
	assert.Equal(t, "peak extraction blew up", snapshot.Status)
}

func TestPool_NilProcessorStaysIdle(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	svc := ledger.NewService(store, nil)
	pool := worker.NewPool(store, svc, nil, nil, nil, 2, 10*time.Millisecond)

	ctx := context.Background()
	job, err := svc.CreateJob(ctx, 0, 1, 1, 4)
	require.NoError(t, err)

	require.NoError(t, pool.Start(ctx))
	time.Sleep(50 * time.Millisecond)
	require.NoError(t, pool.Stop(ctx))

	// Nothing claimed the job.
	snapshot, err := svc.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStatePending, snapshot.State)
}

func TestPool_DrainsMultipleJobs(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	svc := ledger.NewService(store, nil)
	processor := &countingProcessor{done: make(chan int64, 8)}
	pool := worker.NewPool(store, svc, processor, nil, nil, 3, 10*time.Millisecond)

	ctx := context.Background()
	var jobIDs []int64
	for i := 0; i < 5; i++ {
		job, err := svc.CreateJob(ctx, 0, i, 1, 2)
		require.NoError(t, err)
		jobIDs = append(jobIDs, job.ID)
	}

	require.NoError(t, pool.Start(ctx))
	defer func() { require.NoError(t, pool.Stop(ctx)) }()

	for range jobIDs {
		select {
		case <-processor.done:
		case <-time.After(5 * time.Second):
			t.Fatal("timed out waiting for the pool to drain the jobs")
		}
	}

	for _, id := range jobIDs {
		snapshot := waitForTerminal(t, svc, id)
		assert.Equal(t, model.JobStateDone, snapshot.State)
		assert.Equal(t, 2, snapshot.TasksDone)
	}
}
