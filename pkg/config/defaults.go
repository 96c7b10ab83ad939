package config

import "time"

// Default values applied by ApplyDefaults.
const (
	DefaultStorageBackend = "memory"
	DefaultSQLitePath     = "data/optic.db"
	DefaultSQLiteDriver   = "sqlite3"
	DefaultRetentionDays  = 90
	DefaultPruneSchedule  = "0 3 * * *"
	DefaultArchivePath    = "data/archives/"
	DefaultLogLevel       = "info"
	DefaultLogFormat      = "json"
	DefaultNamespace      = "optic"
	DefaultSubsystem      = "metrics"
)

// ApplyDefaults fills in zero-valued fields with sensible defaults.
// It never overrides a value that was set explicitly.
func ApplyDefaults(cfg *Config) {
	if cfg.Storage.Backend == "" {
		cfg.Storage.Backend = DefaultStorageBackend
	}
	if cfg.Storage.SQLite.Path == "" {
		cfg.Storage.SQLite.Path = DefaultSQLitePath
	}
	if cfg.Storage.SQLite.Driver == "" {
		cfg.Storage.SQLite.Driver = DefaultSQLiteDriver
	}
	if cfg.Storage.SQLite.MaxOpenConns == 0 {
		cfg.Storage.SQLite.MaxOpenConns = 10
	}
	if cfg.Storage.SQLite.MaxIdleConns == 0 {
		cfg.Storage.SQLite.MaxIdleConns = 5
	}
	if cfg.Storage.SQLite.BusyTimeout == 0 {
		cfg.Storage.SQLite.BusyTimeout = 5 * time.Second
	}

	if cfg.Retention.Days == 0 {
		cfg.Retention.Days = DefaultRetentionDays
	}
	if cfg.Retention.PruneSchedule == "" {
		cfg.Retention.PruneSchedule = DefaultPruneSchedule
	}
	if cfg.Retention.ArchivePath == "" {
		cfg.Retention.ArchivePath = DefaultArchivePath
	}

	if cfg.Telemetry.Logging.Level == "" {
		cfg.Telemetry.Logging.Level = DefaultLogLevel
	}
	if cfg.Telemetry.Logging.Format == "" {
		cfg.Telemetry.Logging.Format = DefaultLogFormat
	}
	if cfg.Telemetry.Metrics.Namespace == "" {
		cfg.Telemetry.Metrics.Namespace = DefaultNamespace
	}
	if cfg.Telemetry.Metrics.Subsystem == "" {
		cfg.Telemetry.Metrics.Subsystem = DefaultSubsystem
	}
	if len(cfg.Telemetry.Metrics.DurationBuckets) == 0 {
		// Tuned for LLM inference latencies (100ms - 30s)
		cfg.Telemetry.Metrics.DurationBuckets = []float64{0.1, 0.25, 0.5, 1.0, 2.0, 5.0, 10.0, 30.0}
	}
	if len(cfg.Telemetry.Metrics.TokenBuckets) == 0 {
		// Tuned for per-inference token counts (100 - 100K)
		cfg.Telemetry.Metrics.TokenBuckets = []float64{100, 500, 1000, 5000, 10000, 50000, 100000}
	}

	for i := range cfg.Models {
		if cfg.Models[i].Currency == "" {
			cfg.Models[i].Currency = "USD"
		}
	}
}
