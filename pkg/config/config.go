package config

import "time"

// Config is the root configuration for the optic metrics engine.
// It is loaded from YAML, optionally overridden by OPTIC_* environment
// variables, and validated before use.
type Config struct {
	// Storage configures the metric record store.
	Storage StorageConfig `yaml:"storage"`

	// Retention configures age-based pruning of stored records.
	Retention RetentionConfig `yaml:"retention"`

	// Telemetry configures logging and the Prometheus bridge.
	Telemetry TelemetryConfig `yaml:"telemetry"`

	// Models lists the models with known pricing.
	Models []ModelConfig `yaml:"models"`

	// Alerts lists the alert threshold definitions applied at startup
	// (and re-applied on hot reload when watching is enabled).
	Alerts []AlertConfig `yaml:"alerts"`

	// Watch enables hot reloading of this file: model rate cards and
	// alert thresholds are re-applied when the file changes.
	Watch bool `yaml:"watch"`
}

// StorageConfig selects and configures the storage backend.
type StorageConfig struct {
	// Backend is "memory" or "sqlite".
	Backend string `yaml:"backend"`

	// SQLite holds backend-specific settings, used when Backend is "sqlite".
	SQLite SQLiteConfig `yaml:"sqlite"`
}

// SQLiteConfig contains SQLite-specific storage settings.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string `yaml:"path"`

	// Driver selects the SQL driver: "sqlite3" (cgo) or "sqlite" (pure Go).
	Driver string `yaml:"driver"`

	// MaxOpenConns limits open connections to the database.
	MaxOpenConns int `yaml:"max_open_conns"`

	// MaxIdleConns limits idle connections kept in the pool.
	MaxIdleConns int `yaml:"max_idle_conns"`

	// WALMode enables write-ahead logging.
	WALMode bool `yaml:"wal_mode"`

	// BusyTimeout is the SQLite busy timeout.
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// RetentionConfig configures age-based record pruning.
type RetentionConfig struct {
	// Days is the number of days to retain records. 0 disables pruning.
	Days int `yaml:"days"`

	// PruneSchedule is a cron expression for automatic pruning.
	// Empty disables the scheduler.
	PruneSchedule string `yaml:"prune_schedule"`

	// ArchiveBeforeDelete exports records to JSON before deletion.
	ArchiveBeforeDelete bool `yaml:"archive_before_delete"`

	// ArchivePath is the directory archived records are written to.
	ArchivePath string `yaml:"archive_path"`
}

// TelemetryConfig configures logging and metrics exposition.
type TelemetryConfig struct {
	Logging LoggingConfig `yaml:"logging"`
	Metrics MetricsConfig `yaml:"metrics"`
}

// LoggingConfig configures the structured logger.
type LoggingConfig struct {
	// Level is one of "debug", "info", "warn", "error".
	Level string `yaml:"level"`

	// Format is "json" or "text".
	Format string `yaml:"format"`
}

// MetricsConfig configures the Prometheus bridge.
type MetricsConfig struct {
	// Enabled turns the Prometheus observer on.
	Enabled bool `yaml:"enabled"`

	// Namespace and Subsystem prefix every exported metric name.
	Namespace string `yaml:"namespace"`
	Subsystem string `yaml:"subsystem"`

	// DurationBuckets are histogram buckets for inference duration in
	// seconds. Defaults are tuned for LLM inference latencies.
	DurationBuckets []float64 `yaml:"duration_buckets"`

	// TokenBuckets are histogram buckets for per-inference token counts.
	TokenBuckets []float64 `yaml:"token_buckets"`
}

// ModelConfig registers pricing for one model.
type ModelConfig struct {
	// ID is the model identifier (e.g., "gpt-4").
	ID string `yaml:"id"`

	// PromptCostPer1k is the USD cost per 1000 prompt tokens.
	PromptCostPer1k float64 `yaml:"prompt_cost_per_1k"`

	// CompletionCostPer1k is the USD cost per 1000 completion tokens.
	CompletionCostPer1k float64 `yaml:"completion_cost_per_1k"`

	// Currency defaults to "USD" when empty.
	Currency string `yaml:"currency"`
}

// AlertConfig defines one alert threshold.
type AlertConfig struct {
	// ModelID is the model the threshold applies to.
	ModelID string `yaml:"model_id"`

	// Metric is the metric name (e.g., "latency_ms", "total_cost").
	Metric string `yaml:"metric"`

	// Threshold is the boundary value.
	Threshold float64 `yaml:"threshold"`

	// UpperBound selects the breach direction: true alerts when the
	// observed value exceeds the threshold, false when it falls below.
	UpperBound bool `yaml:"upper_bound"`

	// CooldownMinutes suppresses repeat alerts for the same
	// (model, metric) pair within the window.
	CooldownMinutes int `yaml:"cooldown_minutes"`

	// Channels lists the notification channels to dispatch to.
	Channels []string `yaml:"channels"`
}
