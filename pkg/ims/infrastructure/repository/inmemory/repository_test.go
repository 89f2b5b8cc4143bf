package inmemory_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	"github.com/molspect/imsbase/pkg/ims/infrastructure/repository/inmemory"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
)

func TestInMemoryStore_SaveJobAssignsIDs(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	first := model.NewJob(0, 1, 1, 10)
	second := model.NewJob(0, 2, 1, 10)
	require.NoError(t, store.SaveJob(ctx, first))
	require.NoError(t, store.SaveJob(ctx, second))

	assert.Equal(t, int64(1), first.ID)
	assert.Equal(t, int64(2), second.ID)
}

func TestInMemoryStore_UpdateJob_OptimisticLocking(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	job := model.NewJob(0, 1, 1, 10)
	require.NoError(t, store.SaveJob(ctx, job))

	// Two readers hold the same version.
	a, err := store.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	b, err := store.FindJobByID(ctx, job.ID)
	require.NoError(t, err)

	a.TasksDone = 1
	require.NoError(t, store.UpdateJob(ctx, a))

	// The second writer's version is stale now.
	b.TasksDone = 2
	err = store.UpdateJob(ctx, b)
	require.Error(t, err)
	assert.True(t, exception.IsOptimisticLockingFailure(err))

	// The first writer's update won.
	current, err := store.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, current.TasksDone)
}

func TestInMemoryStore_FindJobByID_ReturnsCopy(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	job := model.NewJob(0, 1, 1, 10)
	require.NoError(t, store.SaveJob(ctx, job))

	found, err := store.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	found.TasksDone = 99

	again, err := store.FindJobByID(ctx, job.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, again.TasksDone)
}

func TestInMemoryStore_ClaimPendingJob(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	first := model.NewJob(0, 1, 1, 10)
	second := model.NewJob(0, 2, 1, 10)
	require.NoError(t, store.SaveJob(ctx, first))
	require.NoError(t, store.SaveJob(ctx, second))

	claimed, err := store.ClaimPendingJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, first.ID, claimed.ID)
	assert.Equal(t, model.JobStateRunning, claimed.State)

	claimed, err = store.ClaimPendingJob(ctx)
	require.NoError(t, err)
	assert.Equal(t, second.ID, claimed.ID)

	_, err = store.ClaimPendingJob(ctx)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}

func TestInMemoryStore_FindJobsByDataset(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveJob(ctx, model.NewJob(0, 1, 7, 10)))
	require.NoError(t, store.SaveJob(ctx, model.NewJob(0, 2, 8, 10)))
	require.NoError(t, store.SaveJob(ctx, model.NewJob(0, 3, 7, 10)))

	jobs, err := store.FindJobsByDataset(ctx, 7)
	require.NoError(t, err)
	require.Len(t, jobs, 2)
	assert.Less(t, jobs[0].ID, jobs[1].ID)
}

func TestInMemoryStore_ResultsAreAppendOnly(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AppendResultData(ctx, []*model.ResultDatum{
		{JobID: 1, Param: 0, Adduct: 1, Peak: 0, Spectrum: 5, Value: 0.8},
	}))
	require.NoError(t, store.AppendResultData(ctx, []*model.ResultDatum{
		{JobID: 1, Param: 0, Adduct: 1, Peak: 1, Spectrum: 5, Value: 0.2},
		{JobID: 2, Param: 0, Adduct: 1, Peak: 0, Spectrum: 0, Value: 0.1},
	}))

	data, err := store.FindResultDataByJob(ctx, 1)
	require.NoError(t, err)
	assert.Len(t, data, 2)

	byParam, err := store.FindResultDataByJobAndParam(ctx, 1, 0)
	require.NoError(t, err)
	assert.Len(t, byParam, 2)
}

func TestInMemoryStore_ResultStats_IndependentRowsPerIon(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	// Two stats rows for the same (job, formula) with different adduct/param
	// coexist and are both retrievable.
	require.NoError(t, store.AppendResultStats(ctx, []*model.ResultStat{
		{JobID: 1, FormulaID: 10, Adduct: 1, Param: 0, Stats: model.NewStatsPayload(map[string]interface{}{"moc": 0.9})},
		{JobID: 1, FormulaID: 10, Adduct: 2, Param: 1, Stats: model.NewStatsPayload(map[string]interface{}{"moc": 0.7})},
	}))

	stats, err := store.FindResultStatsByJob(ctx, 1)
	require.NoError(t, err)
	require.Len(t, stats, 2)

	byFormula, err := store.FindResultStatsByFormula(ctx, 10)
	require.NoError(t, err)
	assert.Len(t, byFormula, 2)

	// The (job, formula) keyed read sees both rows too, and only rows of
	// that job.
	require.NoError(t, store.AppendResultStats(ctx, []*model.ResultStat{
		{JobID: 2, FormulaID: 10, Adduct: 1, Param: 0, Stats: model.NewStatsPayload(map[string]interface{}{"moc": 0.1})},
	}))
	byJobAndFormula, err := store.FindResultStatsByJobAndFormula(ctx, 1, 10)
	require.NoError(t, err)
	require.Len(t, byJobAndFormula, 2)
	assert.Equal(t, 1, byJobAndFormula[0].Adduct)
	assert.Equal(t, 2, byJobAndFormula[1].Adduct)
}

func TestInMemoryStore_FindResultData_KeyedByIonPeak(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AppendResultData(ctx, []*model.ResultDatum{
		{JobID: 1, Param: 0, Adduct: 1, Peak: 0, Spectrum: 7, Value: 0.5},
		{JobID: 1, Param: 0, Adduct: 1, Peak: 0, Spectrum: 8, Value: 0.6},
		{JobID: 1, Param: 0, Adduct: 1, Peak: 1, Spectrum: 7, Value: 0.1},
		{JobID: 1, Param: 0, Adduct: 2, Peak: 0, Spectrum: 7, Value: 0.2},
		{JobID: 2, Param: 0, Adduct: 1, Peak: 0, Spectrum: 7, Value: 0.3},
	}))

	data, err := store.FindResultData(ctx, 1, 0, 0, 1)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, 7, data[0].Spectrum)
	assert.Equal(t, 8, data[1].Spectrum)
}

func TestInMemoryStore_FindFormulasBySumFormula(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveFormulas(ctx, []*model.Formula{
		{DBID: 1, ExternalID: "HMDB0001", SfID: 10, Name: "glucose", SumFormula: "C6H12O6"},
		{DBID: 2, ExternalID: "CHEBI0002", SfID: 10, Name: "fructose", SumFormula: "C6H12O6"},
		{DBID: 1, ExternalID: "HMDB0003", SfID: 11, Name: "alanine", SumFormula: "C3H7NO2"},
	}))

	formulas, err := store.FindFormulasBySumFormula(ctx, "C6H12O6")
	require.NoError(t, err)
	require.Len(t, formulas, 2)
	assert.Equal(t, "glucose", formulas[0].Name)
	assert.Equal(t, "fructose", formulas[1].Name)

	none, err := store.FindFormulasBySumFormula(ctx, "H2O")
	require.NoError(t, err)
	assert.Empty(t, none)
}

func TestInMemoryStore_FindAggregateFormulaBySumFormula(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	af, err := model.NewAggregateFormula(1, "C6H12O6", []int{1, 2}, []string{"HMDB0001", "CHEBI0002"}, []string{"glucose", "fructose"})
	require.NoError(t, err)
	require.NoError(t, store.SaveAggregateFormulas(ctx, []*model.AggregateFormula{af}))

	found, err := store.FindAggregateFormulaBySumFormula(ctx, "C6H12O6")
	require.NoError(t, err)
	assert.Equal(t, 1, found.ID)
	require.Len(t, found.Members, 2)

	_, err = store.FindAggregateFormulaBySumFormula(ctx, "H2O")
	assert.ErrorIs(t, err, repository.ErrAggregateFormulaNotFound)
}

func TestInMemoryStore_SaveDatasetWithCoordinates(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	ds := &model.Dataset{ID: 1, Name: "slice", Rows: 2, Cols: 2, Status: model.DatasetStatusNew}
	coords := []*model.Coordinate{
		{DatasetID: 1, Index: 3, X: 1, Y: 1},
		{DatasetID: 1, Index: 0, X: 0, Y: 0},
		{DatasetID: 1, Index: 1, X: 1, Y: 0},
		{DatasetID: 1, Index: 2, X: 0, Y: 1},
	}
	require.NoError(t, store.SaveDataset(ctx, ds, coords))

	found, err := store.FindCoordinatesByDataset(ctx, 1)
	require.NoError(t, err)
	require.Len(t, found, 4)
	for i, c := range found {
		assert.Equal(t, i, c.Index) // ordered by spectrum index
	}

	require.NoError(t, store.UpdateDatasetStatus(ctx, 1, model.DatasetStatusFinished))
	updated, err := store.FindDatasetByID(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, model.DatasetStatusFinished, updated.Status)

	err = store.UpdateDatasetStatus(ctx, 42, model.DatasetStatusFailed)
	assert.ErrorIs(t, err, repository.ErrDatasetNotFound)
}
