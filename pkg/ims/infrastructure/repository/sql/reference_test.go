// Keyed read paths of the reference and result tables.
package sql_test

import (
	"context"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	testify_mock "github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	tx "github.com/molspect/imsbase/pkg/ims/core/tx"
	testutil "github.com/molspect/imsbase/pkg/ims/test"
)

func TestSQLStore_FindFormulasBySumFormula(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	rows := sqlmock.NewRows([]string{"db_id", "id", "sf_id", "name", "sf"}).
		AddRow(1, "HMDB0001", 10, "glucose", "C6H12O6").
		AddRow(2, "CHEBI0002", 10, "fructose", "C6H12O6")

	mock.ExpectQuery("SELECT (.+) FROM `formulas`").WillReturnRows(rows)

	formulas, err := store.FindFormulasBySumFormula(context.Background(), "C6H12O6")
	require.NoError(t, err)
	require.Len(t, formulas, 2)
	assert.Equal(t, "glucose", formulas[0].Name)
	assert.Equal(t, 10, formulas[1].SfID)
	assert.Equal(t, "CHEBI0002", formulas[1].ExternalID)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_FindAggregateFormulaBySumFormula(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	rows := sqlmock.NewRows([]string{"id", "sf", "db_ids", "subst_ids", "names"}).
		AddRow(1, "C6H12O6", "[1,2]", `["HMDB0001","CHEBI0002"]`, `["glucose","fructose"]`)

	mock.ExpectQuery("SELECT (.+) FROM `agg_formulas`").WillReturnRows(rows)

	af, err := store.FindAggregateFormulaBySumFormula(context.Background(), "C6H12O6")
	require.NoError(t, err)
	assert.Equal(t, 1, af.ID)
	require.Len(t, af.Members, 2)
	assert.Equal(t, "HMDB0001", af.Members[0].SubstID)
	assert.Equal(t, "fructose", af.Members[1].Name)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_FindAggregateFormulaBySumFormula_NotFound(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	mock.ExpectQuery("SELECT (.+) FROM `agg_formulas`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindAggregateFormulaBySumFormula(context.Background(), "H2O")
	assert.ErrorIs(t, err, repository.ErrAggregateFormulaNotFound)
}

func TestSQLStore_UpdateDatasetStatus_SameStatusSucceeds(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	rows := sqlmock.NewRows([]string{"dataset_id", "dataset", "filename", "nrows", "ncols", "status", "metadata"}).
		AddRow(1, "brain slice", "brain.imzML", 40, 30, "FINISHED", nil)
	mock.ExpectQuery("SELECT (.+) FROM `datasets`").WillReturnRows(rows)

	// Zero changed rows from a no-op status write must not read as not-found.
	mockTx := new(testutil.MockTx)
	mockTx.On("ExecuteUpdate", testify_mock.Anything, testify_mock.Anything, "UPDATE", "datasets",
		map[string]interface{}{"dataset_id": 1}).Return(int64(0), nil)

	err := store.UpdateDatasetStatus(tx.WithTx(context.Background(), mockTx), 1, model.DatasetStatusFinished)
	assert.NoError(t, err)
	mockTx.AssertExpectations(t)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_UpdateDatasetStatus_MissingDataset(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	mock.ExpectQuery("SELECT (.+) FROM `datasets`").
		WillReturnRows(sqlmock.NewRows([]string{"dataset_id"}))

	// No update is attempted for a dataset that does not exist.
	mockTx := new(testutil.MockTx)
	err := store.UpdateDatasetStatus(tx.WithTx(context.Background(), mockTx), 999, model.DatasetStatusFailed)
	assert.ErrorIs(t, err, repository.ErrDatasetNotFound)
	mockTx.AssertExpectations(t)
}

func TestSQLStore_FindResultData_KeyedByIonPeak(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	rows := sqlmock.NewRows([]string{"job_id", "param", "adduct", "peak", "spectrum", "value"}).
		AddRow(int64(1), 0, 1, 0, 7, 0.5).
		AddRow(int64(1), 0, 1, 0, 8, 0.6)

	mock.ExpectQuery("SELECT (.+) FROM `job_result_data`").WillReturnRows(rows)

	data, err := store.FindResultData(context.Background(), 1, 0, 0, 1)
	require.NoError(t, err)
	require.Len(t, data, 2)
	assert.Equal(t, 7, data[0].Spectrum)
	assert.Equal(t, 0.6, data[1].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_FindResultStatsByJobAndFormula(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	rows := sqlmock.NewRows([]string{"job_id", "formula_id", "adduct", "param", "stats"}).
		AddRow(int64(1), 10, 1, 0, `{"version":1,"values":{"moc":0.9}}`).
		AddRow(int64(1), 10, 2, 1, `{"version":1,"values":{"moc":0.7}}`)

	mock.ExpectQuery("SELECT (.+) FROM `job_result_stats`").WillReturnRows(rows)

	stats, err := store.FindResultStatsByJobAndFormula(context.Background(), 1, 10)
	require.NoError(t, err)
	require.Len(t, stats, 2)
	assert.Equal(t, 1, stats[0].Adduct)
	assert.Equal(t, model.StatsPayloadVersion, stats[0].Stats.Version)
	assert.Equal(t, 0.7, stats[1].Stats.Values["moc"])
	assert.NoError(t, mock.ExpectationsWereMet())
}
