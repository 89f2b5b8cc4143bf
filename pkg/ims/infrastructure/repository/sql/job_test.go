// Package sql_test provides unit tests for the SQL store implementation,
// focusing on the job ledger write paths and their locking behavior.
package sql_test

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testify_mock "github.com/stretchr/testify/mock"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"

	dbadapter "github.com/molspect/imsbase/pkg/ims/adapter/database"
	dbconfig "github.com/molspect/imsbase/pkg/ims/adapter/database/config"
	gormadapter "github.com/molspect/imsbase/pkg/ims/adapter/database/gorm"
	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	repository "github.com/molspect/imsbase/pkg/ims/core/domain/repository"
	tx "github.com/molspect/imsbase/pkg/ims/core/tx"
	sqlrepo "github.com/molspect/imsbase/pkg/ims/infrastructure/repository/sql"
	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	testutil "github.com/molspect/imsbase/pkg/ims/test"
)

// setupStoreMock sets up the GORM mock environment for SQL store tests.
func setupStoreMock(t *testing.T) (*gorm.DB, sqlmock.Sqlmock, dbadapter.DBConnection, repository.Store) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	gormDB, err := gorm.Open(mysql.New(mysql.Config{
		Conn:                      sqlDB,
		SkipInitializeWithVersion: true,
	}), &gorm.Config{})
	require.NoError(t, err)

	cfg := dbconfig.DatabaseConfig{Type: "mock_db"}
	dbConn := gormadapter.NewGormDBAdapter(gormDB, cfg, "mock_db")

	txManager := &testutil.MockTxManager{}
	resolver := testutil.NewTestSingleConnectionResolver(dbConn)
	store := sqlrepo.NewSQLStore(resolver, txManager, "mock_db", 500)

	return gormDB, mock, dbConn, store
}

func closeStoreMock(gormDB *gorm.DB, mock sqlmock.Sqlmock) {
	mock.ExpectClose()
	sqlDB, _ := gormDB.DB()
	sqlDB.Close()
}

func TestSQLStore_SaveJob(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	job := model.NewJob(0, 42, 7, 10)

	mockTx := new(testutil.MockTx)
	mockTx.On("ExecuteUpdate", testify_mock.Anything, testify_mock.Anything, "CREATE", "jobs", testify_mock.Anything).Return(int64(1), nil)

	err := store.SaveJob(tx.WithTx(context.Background(), mockTx), job)
	assert.NoError(t, err)
	mockTx.AssertExpectations(t)
}

func TestSQLStore_UpdateJob(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	job := model.NewJob(0, 42, 7, 10)
	job.ID = 3
	job.Version = 2
	job.TasksDone = 5

	mockTx := new(testutil.MockTx)
	expectedQuery := map[string]interface{}{"id": int64(3), "version": 2}
	mockTx.On("ExecuteUpdate", testify_mock.Anything, testify_mock.Anything, "UPDATE", "jobs", expectedQuery).Return(int64(1), nil)

	err := store.UpdateJob(tx.WithTx(context.Background(), mockTx), job)
	assert.NoError(t, err)
	assert.Equal(t, 3, job.Version) // incremented on success
	mockTx.AssertExpectations(t)
}

func TestSQLStore_UpdateJob_Conflict(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	job := model.NewJob(0, 42, 7, 10)
	job.ID = 3
	job.Version = 2

	// Zero affected rows means the version predicate missed.
	mockTx := new(testutil.MockTx)
	mockTx.On("ExecuteUpdate", testify_mock.Anything, testify_mock.Anything, "UPDATE", "jobs", testify_mock.Anything).Return(int64(0), nil)

	err := store.UpdateJob(tx.WithTx(context.Background(), mockTx), job)
	require.Error(t, err)
	assert.True(t, exception.IsOptimisticLockingFailure(err))
	assert.Equal(t, 2, job.Version) // rolled back on conflict
	mockTx.AssertExpectations(t)
}

func TestSQLStore_SaveJobType_Upsert(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	jt := &model.JobType{Code: 0, Description: "formula search"}

	mockTx := new(testutil.MockTx)
	mockTx.On("ExecuteUpsert", testify_mock.Anything, testify_mock.Anything, "job_types",
		[]string{"type"}, []string{"description"}).Return(int64(1), nil)

	err := store.SaveJobType(tx.WithTx(context.Background(), mockTx), jt)
	assert.NoError(t, err)
	mockTx.AssertExpectations(t)
}

func TestSQLStore_AppendResultData(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	data := []*model.ResultDatum{
		{JobID: 1, Param: 0, Adduct: 1, Peak: 0, Spectrum: 5, Value: 0.8},
		{JobID: 1, Param: 0, Adduct: 1, Peak: 1, Spectrum: 5, Value: 0.2},
	}

	mockTx := new(testutil.MockTx)
	mockTx.On("ExecuteUpdate", testify_mock.Anything, testify_mock.Anything, "CREATE", "job_result_data", testify_mock.Anything).Return(int64(2), nil)

	err := store.AppendResultData(tx.WithTx(context.Background(), mockTx), data)
	assert.NoError(t, err)
	mockTx.AssertExpectations(t)
}

func TestSQLStore_AppendResultData_EmptyIsNoop(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	// No executor interaction expected for an empty append.
	mockTx := new(testutil.MockTx)
	err := store.AppendResultData(tx.WithTx(context.Background(), mockTx), nil)
	assert.NoError(t, err)
	mockTx.AssertExpectations(t)
}

func TestSQLStore_FindJobByID(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	start := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	rows := sqlmock.NewRows([]string{
		"id", "type", "formula_id", "dataset_id", "done", "state", "status",
		"tasks_done", "tasks_total", "start", "finish", "version",
	}).AddRow(int64(3), 0, 42, 7, false, "RUNNING", "processing", 5, 10, start, nil, 2)

	mock.ExpectQuery("SELECT (.+) FROM `jobs`").WillReturnRows(rows)

	job, err := store.FindJobByID(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, int64(3), job.ID)
	assert.Equal(t, model.JobStateRunning, job.State)
	assert.Equal(t, 5, job.TasksDone)
	assert.Equal(t, 2, job.Version)
	assert.Nil(t, job.Finish)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSQLStore_FindJobByID_NotFound(t *testing.T) {
	gormDB, mock, _, store := setupStoreMock(t)
	defer closeStoreMock(gormDB, mock)

	mock.ExpectQuery("SELECT (.+) FROM `jobs`").WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindJobByID(context.Background(), 999)
	assert.ErrorIs(t, err, repository.ErrJobNotFound)
}
