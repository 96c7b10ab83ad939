package metrics

import (
	"context"
	"time"
)

// MetricRecord captures the measurements of one completed inference.
// Records are created once by the inference tracker and are never mutated
// afterward; storage backends must treat them as immutable.
type MetricRecord struct {
	// Identity
	ID      string `json:"id"`       // UUID v4
	ModelID string `json:"model_id"` // Model the inference ran against

	// Timestamps
	Timestamp time.Time `json:"timestamp"` // When the inference completed

	// Timing
	TotalTimeSeconds        float64 `json:"total_time_seconds"`          // Wall-clock duration of the inference
	LatencyMs               float64 `json:"latency_ms"`                  // Time to first token when known, else total time, in ms
	TimeToFirstTokenSeconds float64 `json:"time_to_first_token_seconds"` // 0 when first token was never observed

	// Token usage
	Tokens TokenUsage `json:"tokens"`

	// Resource usage
	MemoryUsageMb float64 `json:"memory_usage_mb"` // Process memory at completion, 0 when capture failed
	CPUPercent    float64 `json:"cpu_percent"`     // Best-effort, 0 when unavailable
	GPUPercent    float64 `json:"gpu_percent"`     // Best-effort, 0 when unavailable

	// Cost attribution
	PromptCost     float64 `json:"prompt_cost"`
	CompletionCost float64 `json:"completion_cost"`
	Currency       string  `json:"currency"`

	// Outcome
	ErrorOccurred bool   `json:"error_occurred"`
	ErrorType     string `json:"error_type"`
	CacheHit      bool   `json:"cache_hit"`

	// Metadata holds free-form tags (correlation IDs and the like).
	// Fields consumed structurally by the aggregation layer live in
	// TokenUsage instead of here.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// TokenUsage is the typed token-count sub-structure of a MetricRecord.
// Input and output counts are authoritative; the total is always derived.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`

	// InputEstimated and OutputEstimated flag counts that came from the
	// length heuristic rather than a caller-supplied tokenizer count.
	InputEstimated  bool `json:"input_estimated,omitempty"`
	OutputEstimated bool `json:"output_estimated,omitempty"`
}

// TotalTokens returns the derived token total. It is never stored.
func (u TokenUsage) TotalTokens() int {
	return u.InputTokens + u.OutputTokens
}

// TotalCost returns the derived cost total.
func (r *MetricRecord) TotalCost() float64 {
	return r.PromptCost + r.CompletionCost
}

// TokensPerSecond returns the derived output-token throughput.
// Returns 0 when the total time is unknown or zero.
func (r *MetricRecord) TokensPerSecond() float64 {
	if r.TotalTimeSeconds <= 0 {
		return 0
	}
	return float64(r.Tokens.OutputTokens) / r.TotalTimeSeconds
}

// Metric names accepted by MetricValue and by alert threshold configuration.
const (
	MetricLatencyMs        = "latency_ms"
	MetricTotalTime        = "total_time_seconds"
	MetricTimeToFirstToken = "time_to_first_token_seconds"
	MetricTokensPerSecond  = "tokens_per_second"
	MetricInputTokens      = "input_tokens"
	MetricOutputTokens     = "output_tokens"
	MetricTotalTokens      = "total_tokens"
	MetricMemoryUsageMb    = "memory_usage_mb"
	MetricCPUPercent       = "cpu_percent"
	MetricGPUPercent       = "gpu_percent"
	MetricPromptCost       = "prompt_cost"
	MetricCompletionCost   = "completion_cost"
	MetricTotalCost        = "total_cost"
)

// MetricValue extracts the named numeric field from the record.
// Returns false when the name is not a known metric. Zero values are
// returned as-is; callers decide whether zero means "absent".
func (r *MetricRecord) MetricValue(name string) (float64, bool) {
	switch name {
	case MetricLatencyMs:
		return r.LatencyMs, true
	case MetricTotalTime:
		return r.TotalTimeSeconds, true
	case MetricTimeToFirstToken:
		return r.TimeToFirstTokenSeconds, true
	case MetricTokensPerSecond:
		return r.TokensPerSecond(), true
	case MetricInputTokens:
		return float64(r.Tokens.InputTokens), true
	case MetricOutputTokens:
		return float64(r.Tokens.OutputTokens), true
	case MetricTotalTokens:
		return float64(r.Tokens.TotalTokens()), true
	case MetricMemoryUsageMb:
		return r.MemoryUsageMb, true
	case MetricCPUPercent:
		return r.CPUPercent, true
	case MetricGPUPercent:
		return r.GPUPercent, true
	case MetricPromptCost:
		return r.PromptCost, true
	case MetricCompletionCost:
		return r.CompletionCost, true
	case MetricTotalCost:
		return r.TotalCost(), true
	default:
		return 0, false
	}
}

// KnownMetric reports whether name is a metric MetricValue can extract.
func KnownMetric(name string) bool {
	probe := MetricRecord{}
	_, ok := probe.MetricValue(name)
	return ok
}

// Query defines filter parameters for retrieving metric records.
// The time range is inclusive on both ends.
type Query struct {
	// StartTime is the inclusive lower bound. Nil means unbounded.
	StartTime *time.Time `json:"start_time,omitempty"`

	// EndTime is the inclusive upper bound. Nil means unbounded.
	EndTime *time.Time `json:"end_time,omitempty"`

	// Limit caps the number of records returned. 0 means no limit.
	Limit int `json:"limit,omitempty"`
}

// Store is the contract for metric record storage backends.
// Implementations must be safe under concurrent Append and Query calls,
// must never lose or duplicate a record, and must return query results
// sorted by timestamp ascending.
type Store interface {
	// Append adds a record. It never rejects a well-formed record.
	Append(ctx context.Context, record *MetricRecord) error

	// Query retrieves records for a model matching the filters,
	// sorted by timestamp ascending.
	Query(ctx context.Context, modelID string, query *Query) ([]*MetricRecord, error)

	// Models returns the model identifiers with at least one record.
	Models(ctx context.Context) ([]string, error)

	// Count returns the number of records stored for a model.
	// An empty modelID counts across all models.
	Count(ctx context.Context, modelID string) (int64, error)

	// CleanupOlderThan removes records older than the given age.
	// Returns the number of records removed.
	CleanupOlderThan(ctx context.Context, age time.Duration) (int64, error)

	// Close releases any resources held by the backend.
	Close() error
}

// Persister is an optional capability of a Store. Backends that write
// through to a durable medium report Supported() == true; purely
// in-memory backends report false instead of failing at call time.
type Persister interface {
	// Supported reports whether the backend persists records durably.
	Supported() bool

	// Flush forces any buffered writes to the durable medium.
	Flush(ctx context.Context) error
}

// Observer receives ingestion and alerting events as they happen.
// Implementations must be cheap and non-blocking; the engine invokes
// them synchronously on the recording path.
type Observer interface {
	// ObserveRecord is called once per recorded metric.
	ObserveRecord(record *MetricRecord)

	// ObserveAlert is called once per dispatched (non-suppressed) alert.
	ObserveAlert(modelID, metricName string, value float64)
}

// Clock abstracts time for deterministic tests. Production code uses
// SystemClock; tests inject a fake.
type Clock interface {
	Now() time.Time
}

// SystemClock is the Clock backed by time.Now.
type SystemClock struct{}

// Now returns the current wall-clock time.
func (SystemClock) Now() time.Time { return time.Now() }
