package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"go.uber.org/fx"
	"gopkg.in/yaml.v3"

	"github.com/molspect/imsbase/pkg/ims/support/util/exception"
	"github.com/molspect/imsbase/pkg/ims/support/util/logger"
)

const moduleName = "config"

// ConfigParams defines the dependencies for NewConfigProvider.
type ConfigParams struct {
	fx.In
	EmbeddedConfig EmbeddedConfig // EmbeddedConfig contains the raw bytes of the configuration file.
	EnvFilePath    string         `name:"envFilePath" optional:"true"` // EnvFilePath is the path to the .env file, if any.
}

// loadConfig loads configuration from the embedded file and environment variables.
// This function is intended to be called only once during application startup.
func loadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	if envFilePath != "" {
		if err := godotenv.Load(envFilePath); err != nil {
			logger.Warnf(".env file (%s) not found or could not be loaded: %v", envFilePath, err)
		}
	} else {
		if err := godotenv.Load(); err != nil {
			logger.Debugf(".env file not found or could not be loaded: %v", err)
		}
	}

	cfg := NewConfig()

	// Load configuration from embedded YAML over the defaults.
	if err := yaml.Unmarshal(embeddedConfig, cfg); err != nil {
		return nil, exception.NewStoreError(moduleName, "failed to unmarshal embedded config", err, false)
	}

	// Override selected settings with environment variables.
	applyEnvOverrides(cfg)

	return cfg, nil
}

// applyEnvOverrides overrides configuration fields from IMSBASE_* environment variables.
func applyEnvOverrides(cfg *Config) {
	overrideString(&cfg.IMSBase.System.Logging.Level, "IMSBASE_LOG_LEVEL")
	overrideString(&cfg.IMSBase.Store.DBRef, "IMSBASE_STORE_DB_REF")
	overrideInt(&cfg.IMSBase.Store.BulkChunkSize, "IMSBASE_STORE_BULK_CHUNK_SIZE")
	overrideInt(&cfg.IMSBase.Worker.PoolSize, "IMSBASE_WORKER_POOL_SIZE")
	overrideInt(&cfg.IMSBase.Worker.PollIntervalSeconds, "IMSBASE_WORKER_POLL_INTERVAL_SECONDS")
	overrideString(&cfg.IMSBase.Export.StorageRef, "IMSBASE_EXPORT_STORAGE_REF")
	overrideString(&cfg.IMSBase.Export.Directory, "IMSBASE_EXPORT_DIRECTORY")
	overrideBool(&cfg.IMSBase.Tracing.Enabled, "IMSBASE_TRACING_ENABLED")
	overrideString(&cfg.IMSBase.Tracing.Endpoint, "IMSBASE_TRACING_ENDPOINT")
	overrideString(&cfg.IMSBase.Tracing.ServiceName, "IMSBASE_TRACING_SERVICE_NAME")
}

func overrideString(target *string, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		*target = v
	}
}

func overrideInt(target *int, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			logger.Warnf("ignoring %s: not an integer: %v", key, err)
			return
		}
		*target = n
	}
}

func overrideBool(target *bool, key string) {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			logger.Warnf("ignoring %s: not a boolean: %v", key, err)
			return
		}
		*target = b
	}
}

// NewConfigProvider is an Fx provider that loads and provides *Config.
// It initializes the application configuration by loading defaults,
// merging from embedded YAML, and overriding with environment variables.
// It also sets the global logger level.
func NewConfigProvider(params ConfigParams) (*Config, error) {
	cfg, err := loadConfig(params.EnvFilePath, params.EmbeddedConfig)
	if err != nil {
		return nil, exception.NewStoreError(moduleName, "failed to load configuration", err, false)
	}

	logger.SetLogLevel(cfg.IMSBase.System.Logging.Level)
	logger.Infof("Log level set to: %s", cfg.IMSBase.System.Logging.Level)

	return cfg, nil
}

// LoadConfig loads configuration from the embedded file and environment variables.
// This function is expected to be called only once during application startup.
func LoadConfig(envFilePath string, embeddedConfig EmbeddedConfig) (*Config, error) {
	return loadConfig(envFilePath, embeddedConfig)
}
