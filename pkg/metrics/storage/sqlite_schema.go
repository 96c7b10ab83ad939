package storage

// SchemaVersion is the current database schema version.
const SchemaVersion = 1

// Schema contains the SQL statements to create the metrics database schema.
const Schema = `
-- Metric records table
CREATE TABLE IF NOT EXISTS metric_records (
    id TEXT PRIMARY KEY,
    model_id TEXT NOT NULL,
    timestamp TIMESTAMP NOT NULL,

    -- Timing
    total_time_seconds REAL,
    latency_ms REAL,
    time_to_first_token_seconds REAL,

    -- Token usage
    input_tokens INTEGER,
    output_tokens INTEGER,
    input_estimated BOOLEAN,
    output_estimated BOOLEAN,

    -- Resource usage
    memory_usage_mb REAL,
    cpu_percent REAL,
    gpu_percent REAL,

    -- Cost attribution
    prompt_cost REAL,
    completion_cost REAL,
    currency TEXT,

    -- Outcome
    error_occurred BOOLEAN,
    error_type TEXT,
    cache_hit BOOLEAN,

    -- Free-form tags (JSON)
    metadata TEXT
);

-- Schema version table
CREATE TABLE IF NOT EXISTS schema_version (
    version INTEGER PRIMARY KEY,
    applied_at TIMESTAMP NOT NULL
);

-- Indexes for the single-model time-range query path
CREATE INDEX IF NOT EXISTS idx_metric_records_model_time ON metric_records(model_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_metric_records_timestamp ON metric_records(timestamp);
`

// InsertSchemaVersion inserts the schema version into the schema_version table.
const InsertSchemaVersion = `
INSERT INTO schema_version (version, applied_at)
VALUES (?, datetime('now'))
ON CONFLICT(version) DO NOTHING;
`

// GetSchemaVersion retrieves the current schema version from the database.
const GetSchemaVersion = `
SELECT version FROM schema_version ORDER BY version DESC LIMIT 1;
`
