package config

// Package config provides structures and utilities for managing application configuration.

// EmbeddedConfig holds the content of the configuration file, typically passed from main.go.
// This is used when loading configuration from an embedded source (e.g., a compiled binary).
type EmbeddedConfig []byte

// LogLevel defines the logging level for the application.
type LogLevel string

const (
	LogLevelTrace  LogLevel = "TRACE"
	LogLevelDebug  LogLevel = "DEBUG"
	LogLevelInfo   LogLevel = "INFO"
	LogLevelWarn   LogLevel = "WARN"
	LogLevelError  LogLevel = "ERROR"
	LogLevelFatal  LogLevel = "FATAL"
	LogLevelSilent LogLevel = "SILENT"
)

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the logging level (e.g., "INFO", "DEBUG", "TRACE").
	Level string `yaml:"level"`
}

// SystemConfig holds system-wide settings.
type SystemConfig struct {
	// Timezone is the application timezone (e.g., "UTC").
	Timezone string `yaml:"timezone"`
	// Logging is the logging configuration.
	Logging LoggingConfig `yaml:"logging"`
}

// StoreConfig holds settings for the analysis metadata store.
type StoreConfig struct {
	// DBRef is the name of the database connection used by the store (e.g., "metadata").
	DBRef string `yaml:"db_ref"`
	// BulkChunkSize is the number of rows inserted per batch during bulk loads.
	BulkChunkSize int `yaml:"bulk_chunk_size"`
}

// IngestConfig holds settings for bulk reference data loading.
type IngestConfig struct {
	// Delimiter is the field separator of ingest record streams.
	Delimiter string `yaml:"delimiter"`
	// Quote is the quote character of ingest record streams.
	Quote string `yaml:"quote"`
}

// WorkerConfig holds settings for the background job worker pool.
type WorkerConfig struct {
	// PoolSize is the number of concurrent workers claiming jobs.
	PoolSize int `yaml:"pool_size"`
	// PollIntervalSeconds is the interval between idle polls for pending jobs.
	PollIntervalSeconds int `yaml:"poll_interval_seconds"`
}

// ExportConfig holds settings for result export.
type ExportConfig struct {
	// StorageRef is the name of the storage connection exports are written to (e.g., "results").
	StorageRef string `yaml:"storage_ref"`
	// Directory is the path prefix under which export files are placed.
	Directory string `yaml:"directory"`
}

// TracingConfig holds settings for distributed tracing export.
type TracingConfig struct {
	// Enabled toggles OTLP trace export.
	Enabled bool `yaml:"enabled"`
	// Endpoint is the OTLP gRPC collector endpoint (e.g., "localhost:4317").
	Endpoint string `yaml:"endpoint"`
	// ServiceName identifies this process in exported traces.
	ServiceName string `yaml:"service_name"`
}

// IMSBaseConfig holds all configuration under the "imsbase" top-level key.
type IMSBaseConfig struct {
	// System contains system-wide configurations.
	System SystemConfig `yaml:"system"`
	// Store contains metadata store configurations.
	Store StoreConfig `yaml:"store"`
	// Ingest contains bulk load configurations.
	Ingest IngestConfig `yaml:"ingest"`
	// Worker contains worker pool configurations.
	Worker WorkerConfig `yaml:"worker"`
	// Export contains result export configurations.
	Export ExportConfig `yaml:"export"`
	// Tracing contains trace export configurations.
	Tracing TracingConfig `yaml:"tracing"`
	// AdapterConfigs holds configurations for resource adapters, keyed by
	// adapter kind ("database", "storage") then connection name.
	AdapterConfigs map[string]interface{} `yaml:"adapter"`
}

// Config is the root structure for the entire application configuration.
type Config struct {
	// IMSBase contains the top-level configuration for the analysis metadata store.
	IMSBase IMSBaseConfig `yaml:"imsbase"`
	// EmbeddedConfig holds configuration loaded from an embedded source, not from YAML.
	EmbeddedConfig EmbeddedConfig `yaml:"-"`
}

// NewConfig returns a new instance of Config with default values.
func NewConfig() *Config {
	cfg := &Config{
		IMSBase: IMSBaseConfig{
			System: SystemConfig{
				Timezone: "UTC",
				Logging:  LoggingConfig{Level: "INFO"},
			},
			Store: StoreConfig{
				DBRef:         "metadata",
				BulkChunkSize: 500,
			},
			Ingest: IngestConfig{
				Delimiter: ";",
				Quote:     "@",
			},
			Worker: WorkerConfig{
				PoolSize:            2,
				PollIntervalSeconds: 5,
			},
			Export: ExportConfig{
				StorageRef: "results",
				Directory:  "exports",
			},
			Tracing: TracingConfig{
				Enabled:     false,
				ServiceName: "imsbase",
			},
		},
	}

	// Initialize AdapterConfigs as an empty map, to be populated by YAML.
	cfg.IMSBase.AdapterConfigs = map[string]interface{}{}
	return cfg
}

// DatabaseConfigs extracts the per-connection database configuration maps
// from AdapterConfigs. Returns an empty map when none are configured.
func (c *Config) DatabaseConfigs() map[string]interface{} {
	return c.adapterSection("database")
}

// StorageConfigs extracts the per-connection storage configuration maps
// from AdapterConfigs. Returns an empty map when none are configured.
func (c *Config) StorageConfigs() map[string]interface{} {
	return c.adapterSection("storage")
}

func (c *Config) adapterSection(kind string) map[string]interface{} {
	raw, ok := c.IMSBase.AdapterConfigs[kind]
	if !ok {
		return map[string]interface{}{}
	}
	section, ok := raw.(map[string]interface{})
	if !ok {
		return map[string]interface{}{}
	}
	return section
}
