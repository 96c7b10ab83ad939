package tracker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"kepler-hq/optic/pkg/metrics"
)

// Publisher receives the finished MetricRecord when a tracker stops.
// The engine facade implements it by appending to the store and running
// alert evaluation synchronously before Stop returns.
type Publisher interface {
	Publish(ctx context.Context, record *metrics.MetricRecord) error
}

// state is the tracker lifecycle state.
type state int

const (
	stateCreated state = iota
	stateStarted
	stateStopped // terminal
)

// Tracker measures one inference from start to stop and derives its
// MetricRecord. A tracker belongs to exactly one inference and is not
// meant to be shared across goroutines; the internal mutex only protects
// the idempotent-Stop guarantee.
type Tracker struct {
	modelID   string
	publisher Publisher
	rates     *RateCardRegistry
	clock     metrics.Clock
	probe     SystemProbe
	logger    *slog.Logger

	mu            sync.Mutex
	state         state
	startTime     time.Time
	firstTokenAt  time.Time
	firstTokenSet bool
	input         tokenCount
	errorType     string
	cacheHit      bool
	metadata      map[string]any
	record        *metrics.MetricRecord
}

// tokenCount holds a token count and whether it came from the estimate
// heuristic.
type tokenCount struct {
	tokens    int
	estimated bool
}

// Option customizes a Tracker.
type Option func(*Tracker)

// WithClock injects a clock for deterministic tests.
func WithClock(clock metrics.Clock) Option {
	return func(t *Tracker) { t.clock = clock }
}

// WithProbe injects a system probe for deterministic tests.
func WithProbe(probe SystemProbe) Option {
	return func(t *Tracker) { t.probe = probe }
}

// New creates a tracker for one inference against the given model.
// The publisher receives the finished record when Stop is called.
func New(modelID string, publisher Publisher, rates *RateCardRegistry, opts ...Option) *Tracker {
	t := &Tracker{
		modelID:   modelID,
		publisher: publisher,
		rates:     rates,
		clock:     metrics.SystemClock{},
		probe:     RuntimeProbe{},
		logger:    slog.Default().With("component", "metrics.tracker"),
		state:     stateCreated,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// EstimateTokens approximates a token count from raw text length.
// This is a length heuristic (roughly 4 characters per token), not a real
// tokenizer; counts derived from it are flagged as estimated on the record.
func EstimateTokens(text string) int {
	n := len(text) / 4
	if n < 1 {
		return 1
	}
	return n
}

// resolveTokens returns the supplied count, or the length estimate when
// the count is not positive.
func resolveTokens(text string, supplied int) tokenCount {
	if supplied > 0 {
		return tokenCount{tokens: supplied}
	}
	return tokenCount{tokens: EstimateTokens(text), estimated: true}
}

// Start begins measuring the inference. inputTokens may be zero or
// negative to request the length estimate. Calling Start twice returns
// AlreadyStartedError.
func (t *Tracker) Start(inputText string, inputTokens int) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state != stateCreated {
		return &metrics.AlreadyStartedError{ModelID: t.modelID}
	}

	t.state = stateStarted
	t.startTime = t.clock.Now()
	t.input = resolveTokens(inputText, inputTokens)

	return nil
}

// RecordFirstToken fixes the time-to-first-token measurement. It may be
// called at most once between Start and Stop; repeat calls keep the first
// measurement. Calling it before Start returns NotStartedError.
func (t *Tracker) RecordFirstToken() error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == stateCreated {
		return &metrics.NotStartedError{ModelID: t.modelID}
	}
	if t.state == stateStopped || t.firstTokenSet {
		return nil
	}

	t.firstTokenAt = t.clock.Now()
	t.firstTokenSet = true
	return nil
}

// MarkError flags the inference as failed with the given error type.
// Must be called before Stop to be reflected on the record.
func (t *Tracker) MarkError(errorType string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.errorType = errorType
}

// MarkCacheHit flags the inference as served from cache.
func (t *Tracker) MarkCacheHit() {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.cacheHit = true
}

// AddMetadata attaches a free-form tag to the eventual record.
func (t *Tracker) AddMetadata(key string, value any) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.metadata == nil {
		t.metadata = make(map[string]any)
	}
	t.metadata[key] = value
}

// Stop completes the measurement, derives the MetricRecord, publishes it,
// and returns it. Calling Stop before Start returns NotStartedError.
// Repeat calls are idempotent: they return the already-computed record
// without re-measuring or re-publishing.
func (t *Tracker) Stop(ctx context.Context, outputText string, outputTokens int) (*metrics.MetricRecord, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if t.state == stateCreated {
		return nil, &metrics.NotStartedError{ModelID: t.modelID}
	}
	if t.state == stateStopped {
		return t.record, nil
	}

	now := t.clock.Now()
	totalTime := now.Sub(t.startTime).Seconds()

	// Latency is time-to-first-token when it was observed, total time
	// otherwise.
	var ttft float64
	latencyMs := totalTime * 1000
	if t.firstTokenSet {
		ttft = t.firstTokenAt.Sub(t.startTime).Seconds()
		latencyMs = ttft * 1000
	}

	output := resolveTokens(outputText, outputTokens)
	if output.estimated {
		t.logger.Debug("output token count estimated from text length",
			"model_id", t.modelID,
			"estimated_tokens", output.tokens,
		)
	}

	record := &metrics.MetricRecord{
		ID:                      uuid.New().String(),
		ModelID:                 t.modelID,
		Timestamp:               now,
		TotalTimeSeconds:        totalTime,
		LatencyMs:               latencyMs,
		TimeToFirstTokenSeconds: ttft,
		Tokens: metrics.TokenUsage{
			InputTokens:     t.input.tokens,
			OutputTokens:    output.tokens,
			InputEstimated:  t.input.estimated,
			OutputEstimated: output.estimated,
		},
		Currency:      "USD",
		ErrorOccurred: t.errorType != "",
		ErrorType:     t.errorType,
		CacheHit:      t.cacheHit,
		Metadata:      t.metadata,
	}

	t.captureResources(record)
	t.applyCost(record)

	t.state = stateStopped
	t.record = record

	// Publish synchronously before returning: store append plus alert
	// evaluation happen on this path.
	if t.publisher != nil {
		if err := t.publisher.Publish(ctx, record); err != nil {
			return nil, err
		}
	}

	return record, nil
}

// captureResources fills resource-usage fields best-effort. Any probe
// failure degrades the field to zero and never fails the inference.
func (t *Tracker) captureResources(record *metrics.MetricRecord) {
	if mb, err := t.probe.MemoryMb(); err == nil {
		record.MemoryUsageMb = mb
	} else {
		t.logger.Debug("memory capture degraded to zero",
			"model_id", t.modelID,
			"error", err,
		)
	}

	if cpu, err := t.probe.CPUPercent(); err == nil {
		record.CPUPercent = cpu
	} else {
		t.logger.Debug("cpu capture degraded to zero",
			"model_id", t.modelID,
			"error", err,
		)
	}

	if gpu, err := t.probe.GPUPercent(); err == nil {
		record.GPUPercent = gpu
	} else {
		t.logger.Debug("gpu capture degraded to zero",
			"model_id", t.modelID,
			"error", err,
		)
	}
}

// applyCost computes the token cost from the model's rate card.
// Unregistered models record zero cost.
func (t *Tracker) applyCost(record *metrics.MetricRecord) {
	if t.rates == nil {
		return
	}

	card, ok := t.rates.Lookup(t.modelID)
	if !ok {
		t.logger.Debug("no rate card registered, recording zero cost",
			"model_id", t.modelID,
		)
		return
	}

	record.PromptCost, record.CompletionCost = Cost(
		record.Tokens.InputTokens,
		record.Tokens.OutputTokens,
		card.PromptCostPer1k,
		card.CompletionCostPer1k,
	)
	record.Currency = card.Currency
}
