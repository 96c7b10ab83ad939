package aggregate

import (
	"context"
	"log/slog"
	"time"

	"kepler-hq/optic/pkg/metrics"
)

// PerformanceReport is the aggregate view of a model's recorded metrics
// over a time range. Reports are derived values: they are recomputed on
// each query, owned by the caller, and never mutated in place.
type PerformanceReport struct {
	ModelID       string `json:"model_id"`
	NumInferences int    `json:"num_inferences"`

	// Originating time range; nil means unbounded on that end.
	StartTime *time.Time `json:"start_time,omitempty"`
	EndTime   *time.Time `json:"end_time,omitempty"`

	// Time metrics
	AvgInferenceTimeSeconds    float64 `json:"avg_inference_time_seconds"`
	P50InferenceTimeSeconds    float64 `json:"p50_inference_time_seconds"`
	P90InferenceTimeSeconds    float64 `json:"p90_inference_time_seconds"`
	P95InferenceTimeSeconds    float64 `json:"p95_inference_time_seconds"`
	P99InferenceTimeSeconds    float64 `json:"p99_inference_time_seconds"`
	AvgLatencyMs               float64 `json:"avg_latency_ms"`
	AvgTimeToFirstTokenSeconds float64 `json:"avg_time_to_first_token_seconds"`
	AvgTokensPerSecond         float64 `json:"avg_tokens_per_second"`

	// Token metrics
	TotalInputTokens  int     `json:"total_input_tokens"`
	TotalOutputTokens int     `json:"total_output_tokens"`
	TotalTokens       int     `json:"total_tokens"`
	AvgInputTokens    float64 `json:"avg_input_tokens"`
	AvgOutputTokens   float64 `json:"avg_output_tokens"`

	// Memory metrics
	AvgMemoryUsageMb  float64 `json:"avg_memory_usage_mb"`
	PeakMemoryUsageMb float64 `json:"peak_memory_usage_mb"`

	// System metrics
	AvgCPUPercent float64 `json:"avg_cpu_percent"`
	AvgGPUPercent float64 `json:"avg_gpu_percent"`
	ErrorRate     float64 `json:"error_rate"`
	CacheHitRate  float64 `json:"cache_hit_rate"`

	// Cost metrics
	TotalPromptCost     float64 `json:"total_prompt_cost"`
	TotalCompletionCost float64 `json:"total_completion_cost"`
	TotalCost           float64 `json:"total_cost"`
	CostPer1kTokens     float64 `json:"cost_per_1k_tokens"`
	Currency            string  `json:"currency"`
}

// Engine computes performance reports from stored metric records.
type Engine struct {
	store  metrics.Store
	logger *slog.Logger
}

// NewEngine creates an aggregation engine over the given store.
func NewEngine(store metrics.Store) *Engine {
	return &Engine{
		store:  store,
		logger: slog.Default().With("component", "metrics.aggregate"),
	}
}

// Report computes the performance report for a model over the query's
// time range. An empty result set yields a zero-valued report with
// NumInferences == 0; it never fails for lack of data. Reports are
// deterministic: recomputing over unchanged data yields identical output.
func (e *Engine) Report(ctx context.Context, modelID string, query *metrics.Query) (*PerformanceReport, error) {
	if query == nil {
		query = &metrics.Query{}
	}

	records, err := e.store.Query(ctx, modelID, query)
	if err != nil {
		return nil, err
	}

	report := &PerformanceReport{
		ModelID:   modelID,
		StartTime: query.StartTime,
		EndTime:   query.EndTime,
	}

	if len(records) == 0 {
		return report, nil
	}

	report.NumInferences = len(records)

	n := len(records)
	inferenceTimes := make([]float64, 0, n)
	latencies := make([]float64, 0, n)
	ttfts := make([]float64, 0, n)
	throughputs := make([]float64, 0, n)
	memories := make([]float64, 0, n)
	cpus := make([]float64, 0, n)
	gpus := make([]float64, 0, n)
	inputTokens := make([]float64, 0, n)
	outputTokens := make([]float64, 0, n)

	var errorCount, cacheHitCount int

	for _, r := range records {
		inferenceTimes = append(inferenceTimes, r.TotalTimeSeconds)
		latencies = append(latencies, r.LatencyMs)
		ttfts = append(ttfts, r.TimeToFirstTokenSeconds)
		throughputs = append(throughputs, r.TokensPerSecond())
		memories = append(memories, r.MemoryUsageMb)
		cpus = append(cpus, r.CPUPercent)
		gpus = append(gpus, r.GPUPercent)
		inputTokens = append(inputTokens, float64(r.Tokens.InputTokens))
		outputTokens = append(outputTokens, float64(r.Tokens.OutputTokens))

		// Counting fields sum unconditionally, including zeros.
		report.TotalInputTokens += r.Tokens.InputTokens
		report.TotalOutputTokens += r.Tokens.OutputTokens
		report.TotalPromptCost += r.PromptCost
		report.TotalCompletionCost += r.CompletionCost

		if r.ErrorOccurred {
			errorCount++
		}
		if r.CacheHit {
			cacheHitCount++
		}
		if report.Currency == "" && r.Currency != "" {
			report.Currency = r.Currency
		}
	}

	report.TotalTokens = report.TotalInputTokens + report.TotalOutputTokens
	report.TotalCost = report.TotalPromptCost + report.TotalCompletionCost

	// Averages use the safe mean: non-positive values are treated as
	// "not measured" and excluded from the denominator.
	report.AvgInferenceTimeSeconds = safeMean(inferenceTimes)
	report.AvgLatencyMs = safeMean(latencies)
	report.AvgTimeToFirstTokenSeconds = safeMean(ttfts)
	report.AvgTokensPerSecond = safeMean(throughputs)
	report.AvgMemoryUsageMb = safeMean(memories)
	report.AvgCPUPercent = safeMean(cpus)
	report.AvgGPUPercent = safeMean(gpus)
	report.AvgInputTokens = safeMean(inputTokens)
	report.AvgOutputTokens = safeMean(outputTokens)

	report.PeakMemoryUsageMb = maxValue(memories)

	report.P50InferenceTimeSeconds = Percentile(inferenceTimes, 0.50)
	report.P90InferenceTimeSeconds = Percentile(inferenceTimes, 0.90)
	report.P95InferenceTimeSeconds = Percentile(inferenceTimes, 0.95)
	report.P99InferenceTimeSeconds = Percentile(inferenceTimes, 0.99)

	report.ErrorRate = float64(errorCount) / float64(n)
	report.CacheHitRate = float64(cacheHitCount) / float64(n)

	if report.TotalTokens > 0 {
		report.CostPer1kTokens = report.TotalCost * 1000 / float64(report.TotalTokens)
	}

	return report, nil
}

// Compare computes one report per model over the same time range.
func (e *Engine) Compare(ctx context.Context, modelIDs []string, query *metrics.Query) (map[string]*PerformanceReport, error) {
	reports := make(map[string]*PerformanceReport, len(modelIDs))
	for _, modelID := range modelIDs {
		report, err := e.Report(ctx, modelID, query)
		if err != nil {
			return nil, err
		}
		reports[modelID] = report
	}
	return reports, nil
}
