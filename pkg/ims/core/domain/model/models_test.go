package model_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
)

func TestJobState_IsTerminal(t *testing.T) {
	assert.False(t, model.JobStatePending.IsTerminal())
	assert.False(t, model.JobStateRunning.IsTerminal())
	assert.True(t, model.JobStateDone.IsTerminal())
	assert.True(t, model.JobStateFailed.IsTerminal())
	assert.True(t, model.JobStateCancelled.IsTerminal())
}

func TestNewJob_InitialState(t *testing.T) {
	job := model.NewJob(0, 42, 7, 100)

	assert.Equal(t, model.JobStatePending, job.State)
	assert.False(t, job.Done)
	assert.Equal(t, 0, job.TasksDone)
	assert.Equal(t, 100, job.TasksTotal)
	assert.Nil(t, job.Finish)
	assert.False(t, job.Start.IsZero())
}

func TestJob_Snapshot(t *testing.T) {
	job := model.NewJob(1, 2, 3, 10)
	job.ID = 99
	job.TasksDone = 4
	job.Status = "processing"

	snapshot := job.Snapshot()
	assert.Equal(t, int64(99), snapshot.ID)
	assert.Equal(t, model.JobStatePending, snapshot.State)
	assert.Equal(t, "processing", snapshot.Status)
	assert.Equal(t, 4, snapshot.TasksDone)
	assert.Equal(t, 10, snapshot.TasksTotal)

	// The snapshot is a copy; mutating the job must not change it.
	job.TasksDone = 5
	assert.Equal(t, 4, snapshot.TasksDone)
}

func TestNewAggregateFormula(t *testing.T) {
	af, err := model.NewAggregateFormula(1, "C6H12O6",
		[]int{1, 2}, []string{"HMDB0001", "CHEBI0002"}, []string{"glucose", "fructose"})
	require.NoError(t, err)
	require.Len(t, af.Members, 2)
	assert.Equal(t, 1, af.Members[0].DBID)
	assert.Equal(t, "HMDB0001", af.Members[0].SubstID)
	assert.Equal(t, "fructose", af.Members[1].Name)
}

func TestNewAggregateFormula_MismatchedColumns(t *testing.T) {
	_, err := model.NewAggregateFormula(1, "C6H12O6",
		[]int{1, 2}, []string{"HMDB0001"}, []string{"glucose", "fructose"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched member columns")
}

func TestNewIsotopePattern(t *testing.T) {
	p, err := model.NewIsotopePattern(10, 1, []float64{100.5, 101.5}, []float64{1.0, 0.3})
	require.NoError(t, err)
	require.Len(t, p.Peaks, 2)
	assert.Equal(t, 100.5, p.Peaks[0].Mz)
	assert.Equal(t, 0.3, p.Peaks[1].Intensity)
}

func TestNewIsotopePattern_MismatchedColumns(t *testing.T) {
	_, err := model.NewIsotopePattern(10, 1, []float64{100.5}, []float64{1.0, 0.3})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "mismatched peak columns")
}

func TestIonPeaks_OrderedByMz(t *testing.T) {
	p1, err := model.NewIsotopePattern(1, 1, []float64{200.0, 100.0}, []float64{0.5, 1.0})
	require.NoError(t, err)
	p2, err := model.NewIsotopePattern(2, 1, []float64{150.0}, []float64{1.0})
	require.NoError(t, err)

	peaks := model.IonPeaks([]*model.IsotopePattern{p1, p2})
	require.Len(t, peaks, 3)
	assert.Equal(t, 100.0, peaks[0].Mz)
	assert.Equal(t, 150.0, peaks[1].Mz)
	assert.Equal(t, 200.0, peaks[2].Mz)
	// PeakIndex still refers to the position within the source pattern.
	assert.Equal(t, 1, peaks[0].PeakIndex)
	assert.Equal(t, 0, peaks[2].PeakIndex)
}

func TestCheckPatternUniqueness(t *testing.T) {
	p1, err := model.NewIsotopePattern(1, 1, []float64{100.0}, []float64{1.0})
	require.NoError(t, err)
	p2, err := model.NewIsotopePattern(1, 2, []float64{100.0}, []float64{1.0})
	require.NoError(t, err)

	assert.NoError(t, model.CheckPatternUniqueness([]*model.IsotopePattern{p1, p2}))

	dup, err := model.NewIsotopePattern(1, 1, []float64{101.0}, []float64{0.9})
	require.NoError(t, err)
	err = model.CheckPatternUniqueness([]*model.IsotopePattern{p1, p2, dup})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate formula-adduct combination")
}

func TestDataset_SpectrumCount(t *testing.T) {
	ds := &model.Dataset{Rows: 40, Cols: 30}
	assert.Equal(t, 1200, ds.SpectrumCount())
}
