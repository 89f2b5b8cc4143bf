package config_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/molspect/imsbase/pkg/ims/core/config"
)

func TestNewConfig_Defaults(t *testing.T) {
	cfg := config.NewConfig()

	assert.Equal(t, "INFO", cfg.IMSBase.System.Logging.Level)
	assert.Equal(t, "metadata", cfg.IMSBase.Store.DBRef)
	assert.Equal(t, 500, cfg.IMSBase.Store.BulkChunkSize)
	assert.Equal(t, ";", cfg.IMSBase.Ingest.Delimiter)
	assert.Equal(t, "@", cfg.IMSBase.Ingest.Quote)
	assert.Equal(t, 2, cfg.IMSBase.Worker.PoolSize)
	assert.Equal(t, "results", cfg.IMSBase.Export.StorageRef)
	assert.False(t, cfg.IMSBase.Tracing.Enabled)
}

func TestLoadConfig_MergesEmbeddedYAML(t *testing.T) {
	embedded := []byte(`
imsbase:
  system:
    logging:
      level: "DEBUG"
  store:
    db_ref: "analysisdb"
    bulk_chunk_size: 100
  adapter:
    database:
      analysisdb:
        type: "sqlite"
        database: "test.db"
    storage:
      results:
        type: "local"
        base_dir: "/tmp/results"
`)

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(embedded))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", cfg.IMSBase.System.Logging.Level)
	assert.Equal(t, "analysisdb", cfg.IMSBase.Store.DBRef)
	assert.Equal(t, 100, cfg.IMSBase.Store.BulkChunkSize)
	// Untouched settings keep their defaults.
	assert.Equal(t, ";", cfg.IMSBase.Ingest.Delimiter)

	dbConfigs := cfg.DatabaseConfigs()
	require.Contains(t, dbConfigs, "analysisdb")
	storageConfigs := cfg.StorageConfigs()
	require.Contains(t, storageConfigs, "results")
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("IMSBASE_STORE_DB_REF", "overridden")
	t.Setenv("IMSBASE_WORKER_POOL_SIZE", "8")
	t.Setenv("IMSBASE_TRACING_ENABLED", "true")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig("imsbase:\n  store:\n    db_ref: \"fromyaml\"\n"))
	require.NoError(t, err)

	assert.Equal(t, "overridden", cfg.IMSBase.Store.DBRef)
	assert.Equal(t, 8, cfg.IMSBase.Worker.PoolSize)
	assert.True(t, cfg.IMSBase.Tracing.Enabled)
}

func TestLoadConfig_IgnoresBadEnvValues(t *testing.T) {
	t.Setenv("IMSBASE_WORKER_POOL_SIZE", "not-a-number")

	cfg, err := config.LoadConfig("", config.EmbeddedConfig(""))
	require.NoError(t, err)
	assert.Equal(t, 2, cfg.IMSBase.Worker.PoolSize)
}

func TestLoadConfig_RejectsMalformedYAML(t *testing.T) {
	_, err := config.LoadConfig("", config.EmbeddedConfig("imsbase: [unclosed"))
	require.Error(t, err)
}
