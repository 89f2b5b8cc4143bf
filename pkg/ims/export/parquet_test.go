package export_test

import (
	"context"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreadapter "github.com/molspect/imsbase/pkg/ims/adapter"
	storageAdapter "github.com/molspect/imsbase/pkg/ims/adapter/storage"
	storageConfig "github.com/molspect/imsbase/pkg/ims/adapter/storage/config"
	"github.com/molspect/imsbase/pkg/ims/adapter/storage/local"
	"github.com/molspect/imsbase/pkg/ims/core/config"
	model "github.com/molspect/imsbase/pkg/ims/core/domain/model"
	"github.com/molspect/imsbase/pkg/ims/export"
	"github.com/molspect/imsbase/pkg/ims/infrastructure/repository/inmemory"
)

// singleStorageResolver always resolves to one pre-built storage connection.
type singleStorageResolver struct {
	conn storageAdapter.StorageConnection
}

func (r *singleStorageResolver) ResolveStorageConnection(ctx context.Context, name string) (storageAdapter.StorageConnection, error) {
	return r.conn, nil
}

func (r *singleStorageResolver) ResolveConnection(ctx context.Context, name string) (coreadapter.ResourceConnection, error) {
	return r.conn, nil
}

func newTestExporter(t *testing.T, store *inmemory.InMemoryStore) (*export.Exporter, string) {
	t.Helper()
	baseDir := t.TempDir()
	conn, err := local.NewLocalAdapter(storageConfig.StorageConfig{BaseDir: baseDir}, "results")
	require.NoError(t, err)

	exporter := export.NewExporter(store, &singleStorageResolver{conn: conn}, config.ExportConfig{
		StorageRef: "results",
		Directory:  "exports",
	})
	return exporter, baseDir
}

func TestExporter_ExportJob(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.AppendResultData(ctx, []*model.ResultDatum{
		{JobID: 1, Param: 0, Adduct: 1, Peak: 0, Spectrum: 5, Value: 0.8},
		{JobID: 1, Param: 0, Adduct: 1, Peak: 1, Spectrum: 5, Value: 0.2},
	}))
	require.NoError(t, store.AppendResultStats(ctx, []*model.ResultStat{
		{JobID: 1, FormulaID: 10, Adduct: 1, Param: 0, Stats: model.NewStatsPayload(map[string]interface{}{"moc": 0.9})},
	}))

	exporter, baseDir := newTestExporter(t, store)
	objects, err := exporter.ExportJob(ctx, 1)
	require.NoError(t, err)
	require.Len(t, objects, 2)

	var sawData, sawStats bool
	for _, object := range objects {
		name := filepath.Base(object)
		if strings.HasPrefix(name, "data_") {
			sawData = true
		}
		if strings.HasPrefix(name, "stats_") {
			sawStats = true
		}
		assert.True(t, strings.HasSuffix(name, ".parquet"))

		// The local adapter materializes objects under its base directory.
		assert.FileExists(t, filepath.Join(baseDir, object))
	}
	assert.True(t, sawData)
	assert.True(t, sawStats)
}

func TestExporter_ExportJob_NoResults(t *testing.T) {
	store := inmemory.NewInMemoryStore()
	exporter, _ := newTestExporter(t, store)

	// A job without results produces no objects, not an error.
	objects, err := exporter.ExportJob(context.Background(), 42)
	require.NoError(t, err)
	assert.Empty(t, objects)
}
