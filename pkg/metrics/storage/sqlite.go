package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"kepler-hq/optic/pkg/metrics"
)

// SQLiteConfig contains configuration for the SQLite storage backend.
type SQLiteConfig struct {
	// Path is the database file path.
	Path string

	// Driver selects the sql driver: "sqlite3" (cgo, default) or
	// "sqlite" (pure Go, modernc.org/sqlite).
	Driver string

	// MaxOpenConns is the maximum number of open connections to the database.
	// Default: 10
	MaxOpenConns int

	// MaxIdleConns is the maximum number of idle connections.
	// Default: 5
	MaxIdleConns int

	// WALMode enables Write-Ahead Logging mode for better concurrency.
	// Default: true
	WALMode bool

	// BusyTimeout is the duration to wait when the database is locked.
	// Default: 5 seconds
	BusyTimeout time.Duration
}

// DefaultSQLiteConfig returns the default SQLite configuration.
func DefaultSQLiteConfig() *SQLiteConfig {
	return &SQLiteConfig{
		Path:         "data/metrics.db",
		Driver:       "sqlite3",
		MaxOpenConns: 10,
		MaxIdleConns: 5,
		WALMode:      true,
		BusyTimeout:  5 * time.Second,
	}
}

// SQLiteStore implements the metrics.Store interface using SQLite, keyed
// by (model_id, timestamp). It also implements the Persister capability.
type SQLiteStore struct {
	db     *sql.DB
	config *SQLiteConfig
	logger *slog.Logger
}

// NewSQLiteStore creates a new SQLite storage backend.
// It initializes the database schema and enables WAL mode if configured.
func NewSQLiteStore(config *SQLiteConfig) (*SQLiteStore, error) {
	if config == nil {
		config = DefaultSQLiteConfig()
	}
	if config.Driver == "" {
		config.Driver = "sqlite3"
	}

	logger := slog.Default().With("component", "metrics.storage.sqlite")

	db, err := sql.Open(config.Driver, config.Path)
	if err != nil {
		return nil, metrics.NewStorageError("sqlite", "open", err)
	}

	db.SetMaxOpenConns(config.MaxOpenConns)
	db.SetMaxIdleConns(config.MaxIdleConns)

	s := &SQLiteStore{
		db:     db,
		config: config,
		logger: logger,
	}

	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}

	logger.Info("SQLite metric store initialized",
		"path", config.Path,
		"driver", config.Driver,
		"wal_mode", config.WALMode,
		"max_open_conns", config.MaxOpenConns,
	)

	return s, nil
}

// initialize sets up the database schema and enables WAL mode.
func (s *SQLiteStore) initialize() error {
	if s.config.WALMode {
		_, err := s.db.Exec("PRAGMA journal_mode=WAL;")
		if err != nil {
			return metrics.NewStorageError("sqlite", "enable_wal", err)
		}
		s.logger.Debug("WAL mode enabled")
	}

	busyTimeoutMs := s.config.BusyTimeout.Milliseconds()
	_, err := s.db.Exec(fmt.Sprintf("PRAGMA busy_timeout=%d;", busyTimeoutMs))
	if err != nil {
		return metrics.NewStorageError("sqlite", "set_busy_timeout", err)
	}

	_, err = s.db.Exec(Schema)
	if err != nil {
		return metrics.NewStorageError("sqlite", "create_schema", err)
	}

	_, err = s.db.Exec(InsertSchemaVersion, SchemaVersion)
	if err != nil {
		return metrics.NewStorageError("sqlite", "insert_schema_version", err)
	}

	var version int
	err = s.db.QueryRow(GetSchemaVersion).Scan(&version)
	if err != nil && err != sql.ErrNoRows {
		return metrics.NewStorageError("sqlite", "get_schema_version", err)
	}

	if version != SchemaVersion {
		return metrics.NewStorageError("sqlite", "schema_version_mismatch",
			fmt.Errorf("expected schema version %d, got %d", SchemaVersion, version))
	}

	s.logger.Debug("schema version verified", "version", version)

	return nil
}

// Append persists a metric record to the database.
func (s *SQLiteStore) Append(ctx context.Context, record *metrics.MetricRecord) error {
	metadata, _ := json.Marshal(record.Metadata)

	query := `
		INSERT INTO metric_records (
			id, model_id, timestamp,
			total_time_seconds, latency_ms, time_to_first_token_seconds,
			input_tokens, output_tokens, input_estimated, output_estimated,
			memory_usage_mb, cpu_percent, gpu_percent,
			prompt_cost, completion_cost, currency,
			error_occurred, error_type, cache_hit,
			metadata
		) VALUES (
			?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?
		)
	`

	var errorTypeVal interface{}
	if record.ErrorType != "" {
		errorTypeVal = record.ErrorType
	}

	_, err := s.db.ExecContext(ctx, query,
		record.ID, record.ModelID, record.Timestamp,
		record.TotalTimeSeconds, record.LatencyMs, record.TimeToFirstTokenSeconds,
		record.Tokens.InputTokens, record.Tokens.OutputTokens, record.Tokens.InputEstimated, record.Tokens.OutputEstimated,
		record.MemoryUsageMb, record.CPUPercent, record.GPUPercent,
		record.PromptCost, record.CompletionCost, record.Currency,
		record.ErrorOccurred, errorTypeVal, record.CacheHit,
		string(metadata),
	)

	if err != nil {
		return metrics.NewStorageError("sqlite", "append", err)
	}

	return nil
}

// Query retrieves records for a model matching the filters, sorted by
// timestamp ascending. The time range is inclusive on both ends.
func (s *SQLiteStore) Query(ctx context.Context, modelID string, query *metrics.Query) ([]*metrics.MetricRecord, error) {
	if query == nil {
		query = &metrics.Query{}
	}

	sqlQuery := "SELECT * FROM metric_records WHERE model_id = ?"
	args := []interface{}{modelID}

	if query.StartTime != nil {
		sqlQuery += " AND timestamp >= ?"
		args = append(args, *query.StartTime)
	}
	if query.EndTime != nil {
		sqlQuery += " AND timestamp <= ?"
		args = append(args, *query.EndTime)
	}

	sqlQuery += " ORDER BY timestamp ASC"

	if query.Limit > 0 {
		sqlQuery += fmt.Sprintf(" LIMIT %d", query.Limit)
	}

	rows, err := s.db.QueryContext(ctx, sqlQuery, args...)
	if err != nil {
		return nil, metrics.NewStorageError("sqlite", "query", err)
	}
	defer rows.Close()

	records := []*metrics.MetricRecord{}
	for rows.Next() {
		record, err := s.scanRow(rows)
		if err != nil {
			return nil, metrics.NewStorageError("sqlite", "scan", err)
		}
		records = append(records, record)
	}

	if err := rows.Err(); err != nil {
		return nil, metrics.NewStorageError("sqlite", "query", err)
	}

	return records, nil
}

// Models returns the model identifiers with at least one record.
func (s *SQLiteStore) Models(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT DISTINCT model_id FROM metric_records ORDER BY model_id ASC")
	if err != nil {
		return nil, metrics.NewStorageError("sqlite", "models", err)
	}
	defer rows.Close()

	models := []string{}
	for rows.Next() {
		var modelID string
		if err := rows.Scan(&modelID); err != nil {
			return nil, metrics.NewStorageError("sqlite", "scan", err)
		}
		models = append(models, modelID)
	}

	if err := rows.Err(); err != nil {
		return nil, metrics.NewStorageError("sqlite", "models", err)
	}

	return models, nil
}

// Count returns the number of records stored for a model.
// An empty modelID counts across all models.
func (s *SQLiteStore) Count(ctx context.Context, modelID string) (int64, error) {
	sqlQuery := "SELECT COUNT(*) FROM metric_records"
	args := []interface{}{}
	if modelID != "" {
		sqlQuery += " WHERE model_id = ?"
		args = append(args, modelID)
	}

	var count int64
	err := s.db.QueryRowContext(ctx, sqlQuery, args...).Scan(&count)
	if err != nil {
		return 0, metrics.NewStorageError("sqlite", "count", err)
	}

	return count, nil
}

// CleanupOlderThan removes records older than the given age.
// Returns the number of records removed.
func (s *SQLiteStore) CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().Add(-age)

	result, err := s.db.ExecContext(ctx, "DELETE FROM metric_records WHERE timestamp < ?", cutoff)
	if err != nil {
		return 0, metrics.NewStorageError("sqlite", "cleanup", err)
	}

	count, err := result.RowsAffected()
	if err != nil {
		return 0, metrics.NewStorageError("sqlite", "cleanup", err)
	}

	return count, nil
}

// Supported reports whether the backend persists records durably.
func (s *SQLiteStore) Supported() bool { return true }

// Flush forces a WAL checkpoint so all records reach the main database file.
func (s *SQLiteStore) Flush(ctx context.Context) error {
	if !s.config.WALMode {
		return nil
	}
	_, err := s.db.ExecContext(ctx, "PRAGMA wal_checkpoint(TRUNCATE);")
	if err != nil {
		return metrics.NewStorageError("sqlite", "flush", err)
	}
	return nil
}

// Close releases resources held by the storage backend.
func (s *SQLiteStore) Close() error {
	if err := s.db.Close(); err != nil {
		return metrics.NewStorageError("sqlite", "close", err)
	}

	s.logger.Info("SQLite metric store closed")
	return nil
}

// scanRow scans a database row into a MetricRecord.
func (s *SQLiteStore) scanRow(row *sql.Rows) (*metrics.MetricRecord, error) {
	var record metrics.MetricRecord
	var metadata string
	var errorTypeVal sql.NullString

	err := row.Scan(
		&record.ID, &record.ModelID, &record.Timestamp,
		&record.TotalTimeSeconds, &record.LatencyMs, &record.TimeToFirstTokenSeconds,
		&record.Tokens.InputTokens, &record.Tokens.OutputTokens, &record.Tokens.InputEstimated, &record.Tokens.OutputEstimated,
		&record.MemoryUsageMb, &record.CPUPercent, &record.GPUPercent,
		&record.PromptCost, &record.CompletionCost, &record.Currency,
		&record.ErrorOccurred, &errorTypeVal, &record.CacheHit,
		&metadata,
	)
	if err != nil {
		return nil, err
	}

	if errorTypeVal.Valid {
		record.ErrorType = errorTypeVal.String
	}

	if metadata != "" && metadata != "null" {
		json.Unmarshal([]byte(metadata), &record.Metadata)
	}

	return &record, nil
}
