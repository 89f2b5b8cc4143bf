package ledger_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	"github.com/molspect/imsbase/pkg/ims/infrastructure/repository/inmemory"
	"github.com/molspect/imsbase/pkg/ims/ledger"
)

func newTestService() (*ledger.Service, *inmemory.InMemoryStore) {
	store := inmemory.NewInMemoryStore()
	return ledger.NewService(store, nil), store
}

func TestService_CreateJob(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 42, 7, 10)
	require.NoError(t, err)
	assert.NotZero(t, job.ID)
	assert.Equal(t, model.JobStatePending, job.State)
	assert.Equal(t, 0, job.TasksDone)
	assert.Equal(t, 10, job.TasksTotal)
	assert.False(t, job.Done)
}

func TestService_CreateJob_NegativeTasksTotal(t *testing.T) {
	service, _ := newTestService()

	_, err := service.CreateJob(context.Background(), 0, 1, 1, -1)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "must not be negative")
}

func TestService_AdvanceAndComplete(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 10)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		updated, err := service.Advance(ctx, job.ID, 1, "processing")
		require.NoError(t, err)
		assert.Equal(t, i+1, updated.TasksDone)
	}

	done, err := service.Complete(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.Equal(t, model.JobStateDone, done.State)
	require.NotNil(t, done.Finish)
	assert.False(t, done.Finish.Before(done.Start))
}

func TestService_Advance_NegativeDeltaRejected(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 10)
	require.NoError(t, err)

	_, err = service.Advance(ctx, job.ID, -1, "going backwards")
	require.Error(t, err)

	// The counter is untouched.
	snapshot, err := service.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, snapshot.TasksDone)
}

func TestService_Advance_ClampedAtTotal(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 5)
	require.NoError(t, err)

	updated, err := service.Advance(ctx, job.ID, 100, "overshoot")
	require.NoError(t, err)
	assert.Equal(t, 5, updated.TasksDone)
}

func TestService_Complete_LenientOnShortCount(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 10)
	require.NoError(t, err)

	_, err = service.Advance(ctx, job.ID, 3, "partial")
	require.NoError(t, err)

	// tasks_done != tasks_total only warns; the job still completes.
	done, err := service.Complete(ctx, job.ID)
	require.NoError(t, err)
	assert.True(t, done.Done)
	assert.Equal(t, 3, done.TasksDone)
}

func TestService_Fail(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 10)
	require.NoError(t, err)

	failed, err := service.Fail(ctx, job.ID, "out of memory")
	require.NoError(t, err)
	assert.Equal(t, model.JobStateFailed, failed.State)
	assert.Equal(t, "out of memory", failed.Status)
	assert.False(t, failed.Done)
	require.NotNil(t, failed.Finish)
}

func TestService_Cancel(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 10)
	require.NoError(t, err)

	cancelled, err := service.Cancel(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, model.JobStateCancelled, cancelled.State)
	assert.False(t, cancelled.Done)
}

func TestService_TerminalStateRejectsFurtherMutation(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 1)
	require.NoError(t, err)

	_, err = service.Cancel(ctx, job.ID)
	require.NoError(t, err)

	_, err = service.Advance(ctx, job.ID, 1, "late progress")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "already CANCELLED")

	_, err = service.Complete(ctx, job.ID)
	require.Error(t, err)

	_, err = service.Fail(ctx, job.ID, "late failure")
	require.Error(t, err)
}

func TestService_GetStatus(t *testing.T) {
	service, _ := newTestService()
	ctx := context.Background()

	job, err := service.CreateJob(ctx, 0, 1, 1, 10)
	require.NoError(t, err)

	_, err = service.Advance(ctx, job.ID, 4, "processing")
	require.NoError(t, err)

	snapshot, err := service.GetStatus(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, job.ID, snapshot.ID)
	assert.Equal(t, 4, snapshot.TasksDone)
	assert.Equal(t, 10, snapshot.TasksTotal)
	assert.Equal(t, "processing", snapshot.Status)
	assert.Equal(t, model.JobStatePending, snapshot.State)
}

func TestService_GetStatus_UnknownJob(t *testing.T) {
	service, _ := newTestService()

	_, err := service.GetStatus(context.Background(), 12345)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}
