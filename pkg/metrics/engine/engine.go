package engine

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"kepler-hq/optic/pkg/config"
	"kepler-hq/optic/pkg/metrics"
	"kepler-hq/optic/pkg/metrics/aggregate"
	"kepler-hq/optic/pkg/metrics/alert"
	"kepler-hq/optic/pkg/metrics/export"
	"kepler-hq/optic/pkg/metrics/storage"
	"kepler-hq/optic/pkg/metrics/tracker"
)

// Engine is the single entry point external collaborators use to record
// inferences, query reports, configure alerts, and export metrics. It is
// constructed once at process start and passed by dependency injection;
// there is no process-wide singleton. Isolated instances can be created
// freely, which keeps tests independent.
type Engine struct {
	store      metrics.Store
	alerts     *alert.Engine
	aggregator *aggregate.Engine
	rates      *tracker.RateCardRegistry
	clock      metrics.Clock
	probe      tracker.SystemProbe
	observers  []metrics.Observer
	logger     *slog.Logger
}

// Option customizes an Engine.
type Option func(*options)

type options struct {
	store     metrics.Store
	clock     metrics.Clock
	probe     tracker.SystemProbe
	policy    alert.SuppressionPolicy
	observers []metrics.Observer
}

// WithStore replaces the default in-memory store.
func WithStore(store metrics.Store) Option {
	return func(o *options) { o.store = store }
}

// WithClock injects a clock for deterministic tests.
func WithClock(clock metrics.Clock) Option {
	return func(o *options) { o.clock = clock }
}

// WithProbe injects a system probe for deterministic tests.
func WithProbe(probe tracker.SystemProbe) Option {
	return func(o *options) { o.probe = probe }
}

// WithSuppressionPolicy replaces the default cooldown-only alert
// suppression policy (e.g. with alert.SeverityOverridePolicy).
func WithSuppressionPolicy(policy alert.SuppressionPolicy) Option {
	return func(o *options) { o.policy = policy }
}

// WithObserver attaches an observer (e.g. the Prometheus bridge) that is
// notified of every recorded metric and dispatched alert.
func WithObserver(observer metrics.Observer) Option {
	return func(o *options) { o.observers = append(o.observers, observer) }
}

// New creates an engine. Without options it uses an in-memory store, the
// system clock, the runtime probe, and plain cooldown alert suppression.
func New(opts ...Option) *Engine {
	o := &options{
		clock:  metrics.SystemClock{},
		probe:  tracker.RuntimeProbe{},
		policy: alert.CooldownPolicy{},
	}
	for _, opt := range opts {
		opt(o)
	}
	if o.store == nil {
		o.store = storage.NewMemoryStore()
	}

	e := &Engine{
		store:      o.store,
		aggregator: aggregate.NewEngine(o.store),
		rates:      tracker.NewRateCardRegistry(),
		clock:      o.clock,
		probe:      o.probe,
		observers:  o.observers,
		logger:     slog.Default().With("component", "metrics.engine"),
	}
	e.alerts = alert.NewEngine(
		alert.WithClock(o.clock),
		alert.WithPolicy(o.policy),
	)

	// Alert dispatches flow to observers through a synthetic channel so
	// observation never depends on caller-registered channels.
	if len(e.observers) > 0 {
		_ = e.alerts.RegisterHandler(observerChannel, func(message string, config *alert.Config, value float64) {
			for _, obs := range e.observers {
				obs.ObserveAlert(config.ModelID, config.MetricName, value)
			}
		})
	}

	return e
}

// observerChannel is the internal channel name used to fan alert
// dispatches out to observers.
const observerChannel = "__observer"

// RegisterModel registers the per-model rate card used for cost
// attribution. Registering a model twice replaces its card.
func (e *Engine) RegisterModel(modelID string, promptCostPer1k, completionCostPer1k float64) {
	e.rates.Register(modelID, promptCostPer1k, completionCostPer1k, "USD")
}

// Configure applies the models and alert thresholds a configuration
// declares. It is safe to call again with a reloaded configuration:
// rate cards and thresholds are replaced wholesale per key, so it pairs
// directly with config.FileWatcher's reload callback.
func (e *Engine) Configure(cfg *config.Config) error {
	for _, m := range cfg.Models {
		e.rates.Register(m.ID, m.PromptCostPer1k, m.CompletionCostPer1k, m.Currency)
	}
	for _, a := range cfg.Alerts {
		err := e.SetAlertThreshold(a.ModelID, a.Metric, a.Threshold, a.UpperBound, a.CooldownMinutes, a.Channels)
		if err != nil {
			return err
		}
	}
	return nil
}

// StartInference creates and starts a tracker for one inference.
// inputTokens may be zero to request the length estimate.
func (e *Engine) StartInference(modelID, inputText string, inputTokens int) (*tracker.Tracker, error) {
	t := tracker.New(modelID, e, e.rates,
		tracker.WithClock(e.clock),
		tracker.WithProbe(e.probe),
	)
	if err := t.Start(inputText, inputTokens); err != nil {
		return nil, err
	}
	return t, nil
}

// RecordFirstToken fixes the time-to-first-token measurement on a tracker.
func (e *Engine) RecordFirstToken(t *tracker.Tracker) error {
	return t.RecordFirstToken()
}

// StopInference completes the inference: the tracker derives its record,
// the record is appended to the store and evaluated against alert
// thresholds synchronously, and the record is returned.
func (e *Engine) StopInference(ctx context.Context, t *tracker.Tracker, outputText string, outputTokens int) (*metrics.MetricRecord, error) {
	return t.Stop(ctx, outputText, outputTokens)
}

// Publish implements tracker.Publisher: it is the only ingestion-path
// mutation of the store, followed by synchronous alert evaluation and
// observer notification.
func (e *Engine) Publish(ctx context.Context, record *metrics.MetricRecord) error {
	if err := e.store.Append(ctx, record); err != nil {
		return err
	}

	e.alerts.Evaluate(record)

	for _, obs := range e.observers {
		obs.ObserveRecord(record)
	}

	return nil
}

// GetReport computes the performance report for a model over an optional
// inclusive time range.
func (e *Engine) GetReport(ctx context.Context, modelID string, startTime, endTime *time.Time) (*aggregate.PerformanceReport, error) {
	return e.aggregator.Report(ctx, modelID, &metrics.Query{
		StartTime: startTime,
		EndTime:   endTime,
	})
}

// CompareModels computes one report per model over the same time range.
func (e *Engine) CompareModels(ctx context.Context, modelIDs []string, startTime, endTime *time.Time) (map[string]*aggregate.PerformanceReport, error) {
	return e.aggregator.Compare(ctx, modelIDs, &metrics.Query{
		StartTime: startTime,
		EndTime:   endTime,
	})
}

// ExportMetricsJSON writes a model's raw metric records to a JSON file.
func (e *Engine) ExportMetricsJSON(ctx context.Context, modelID, path string) error {
	records, err := e.store.Query(ctx, modelID, nil)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return metrics.NewExportError("json", len(records), err)
	}
	defer f.Close()

	return export.NewJSONExporter(true).Export(ctx, records, f)
}

// ExportMetricsCSV writes a model's aggregated performance report to a
// CSV file, grouped under section headers.
func (e *Engine) ExportMetricsCSV(ctx context.Context, modelID, path string) error {
	report, err := e.GetReport(ctx, modelID, nil, nil)
	if err != nil {
		return err
	}

	f, err := os.Create(path)
	if err != nil {
		return metrics.NewExportError("csv", report.NumInferences, err)
	}
	defer f.Close()

	return export.NewCSVReportExporter().Export(ctx, report, f)
}

// SetAlertThreshold configures the alert for a (model, metric) pair,
// fully replacing any existing configuration for that key.
func (e *Engine) SetAlertThreshold(modelID, metricName string, thresholdValue float64, isUpperBound bool, cooldownMinutes int, channels []string) error {
	if len(e.observers) > 0 {
		channels = append(append([]string(nil), channels...), observerChannel)
	}
	return e.alerts.SetThreshold(modelID, metricName, thresholdValue, isUpperBound, cooldownMinutes, channels)
}

// RegisterAlertHandler registers the notification handler for a channel.
func (e *Engine) RegisterAlertHandler(channel string, handler alert.Handler) error {
	if channel == observerChannel {
		return metrics.NewConfigError("channel", fmt.Sprintf("%q is reserved", channel))
	}
	return e.alerts.RegisterHandler(channel, handler)
}

// Models returns the model identifiers with at least one record.
func (e *Engine) Models(ctx context.Context) ([]string, error) {
	return e.store.Models(ctx)
}

// CleanupOlderThan removes records older than the given number of days.
// Returns the number of records removed.
func (e *Engine) CleanupOlderThan(ctx context.Context, days int) (int64, error) {
	if days < 0 {
		return 0, metrics.NewConfigError("days", "must not be negative")
	}
	return e.store.CleanupOlderThan(ctx, time.Duration(days)*24*time.Hour)
}

// Persistent reports whether the underlying store persists records
// durably, via the Persister capability.
func (e *Engine) Persistent() bool {
	if p, ok := e.store.(metrics.Persister); ok {
		return p.Supported()
	}
	return false
}

// Flush forces buffered writes to the durable medium when the store
// supports persistence; otherwise it is a no-op.
func (e *Engine) Flush(ctx context.Context) error {
	if p, ok := e.store.(metrics.Persister); ok && p.Supported() {
		return p.Flush(ctx)
	}
	return nil
}

// Close releases the engine's resources, including the store.
func (e *Engine) Close() error {
	return e.store.Close()
}
