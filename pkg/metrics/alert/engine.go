package alert

import (
	"fmt"
	"log/slog"
	"math"
	"sync"
	"time"

	"kepler-hq/optic/pkg/metrics"
)

// Config is the alert threshold for one (model, metric) pair.
// At most one Config exists per pair; setting a new one replaces the old
// entirely, including its cooldown state.
type Config struct {
	ModelID    string `json:"model_id"`
	MetricName string `json:"metric_name"`

	// ThresholdValue is compared with strict inequality: value >
	// threshold breaches when IsUpperBound, value < threshold breaches
	// otherwise. Equality never triggers.
	ThresholdValue float64 `json:"threshold_value"`
	IsUpperBound   bool    `json:"is_upper_bound"`

	// Cooldown is the minimum time between two dispatched alerts for
	// this key, subject to the engine's suppression policy.
	Cooldown time.Duration `json:"cooldown"`

	// NotificationChannels names the handler channels to dispatch to.
	NotificationChannels []string `json:"notification_channels"`
}

// Handler is a notification callback for one channel. Handlers run
// synchronously on the evaluation path; a panicking handler is caught and
// logged without affecting other handlers or the evaluate call.
type Handler func(message string, config *Config, value float64)

// keyState is the mutable per-(model, metric) alert state.
type keyState struct {
	config        *Config
	lastTriggered time.Time
	hasFired      bool
	lastSeverity  Severity
}

// Engine evaluates recorded metrics against configured thresholds and
// dispatches notifications with cooldown suppression.
type Engine struct {
	mu       sync.Mutex
	states   map[string]map[string]*keyState // modelID → metricName
	handlers map[string]Handler
	policy   SuppressionPolicy
	clock    metrics.Clock
	logger   *slog.Logger
}

// Option customizes an Engine.
type Option func(*Engine)

// WithClock injects a clock for deterministic tests.
func WithClock(clock metrics.Clock) Option {
	return func(e *Engine) { e.clock = clock }
}

// WithPolicy replaces the default cooldown-only suppression policy.
func WithPolicy(policy SuppressionPolicy) Option {
	return func(e *Engine) { e.policy = policy }
}

// NewEngine creates an alert engine with the plain cooldown policy.
func NewEngine(opts ...Option) *Engine {
	e := &Engine{
		states:   make(map[string]map[string]*keyState),
		handlers: make(map[string]Handler),
		policy:   CooldownPolicy{},
		clock:    metrics.SystemClock{},
		logger:   slog.Default().With("component", "metrics.alert"),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// SetThreshold configures the alert for a (model, metric) pair, fully
// replacing any existing configuration for that key (no merge; the
// cooldown state resets). Invalid values are rejected here, never
// deferred to evaluation time.
func (e *Engine) SetThreshold(modelID, metricName string, thresholdValue float64, isUpperBound bool, cooldownMinutes int, channels []string) error {
	if modelID == "" {
		return metrics.NewConfigError("model_id", "must not be empty")
	}
	if !metrics.KnownMetric(metricName) {
		return metrics.NewConfigError("metric_name", fmt.Sprintf("unknown metric %q", metricName))
	}
	if math.IsNaN(thresholdValue) || math.IsInf(thresholdValue, 0) {
		return metrics.NewConfigError("threshold_value", "must be finite")
	}
	if cooldownMinutes < 0 {
		return metrics.NewConfigError("cooldown_minutes", "must not be negative")
	}

	config := &Config{
		ModelID:              modelID,
		MetricName:           metricName,
		ThresholdValue:       thresholdValue,
		IsUpperBound:         isUpperBound,
		Cooldown:             time.Duration(cooldownMinutes) * time.Minute,
		NotificationChannels: append([]string(nil), channels...),
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.states[modelID] == nil {
		e.states[modelID] = make(map[string]*keyState)
	}
	e.states[modelID][metricName] = &keyState{config: config}

	e.logger.Debug("alert threshold set",
		"model_id", modelID,
		"metric_name", metricName,
		"threshold", thresholdValue,
		"upper_bound", isUpperBound,
		"cooldown_minutes", cooldownMinutes,
	)

	return nil
}

// RemoveThreshold deletes the alert configuration for a (model, metric)
// pair. Removing an absent key is a no-op.
func (e *Engine) RemoveThreshold(modelID, metricName string) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if byMetric, ok := e.states[modelID]; ok {
		delete(byMetric, metricName)
		if len(byMetric) == 0 {
			delete(e.states, modelID)
		}
	}
}

// RegisterHandler registers the notification handler for a channel.
// Registering a channel twice returns HandlerExistsError.
func (e *Engine) RegisterHandler(channel string, handler Handler) error {
	if channel == "" {
		return metrics.NewConfigError("channel", "must not be empty")
	}
	if handler == nil {
		return metrics.NewConfigError("handler", "must not be nil")
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if _, exists := e.handlers[channel]; exists {
		return &metrics.HandlerExistsError{Channel: channel}
	}
	e.handlers[channel] = handler

	return nil
}

// firing is an alert decision taken inside the critical section and
// dispatched after the lock is released.
type firing struct {
	config   *Config
	value    float64
	severity Severity
	handlers map[string]Handler
}

// Evaluate compares the record against every configured threshold for its
// model. The breach check and the cooldown state update happen in a
// single critical section, so two concurrent breaches of the same key
// cannot both pass the cooldown check. Handler dispatch runs after the
// lock is released. Evaluate never returns an error: handler failures are
// logged and do not propagate.
func (e *Engine) Evaluate(record *metrics.MetricRecord) {
	now := e.clock.Now()

	var firings []firing

	e.mu.Lock()
	for metricName, state := range e.states[record.ModelID] {
		value, ok := record.MetricValue(metricName)
		if !ok {
			// Unreachable for configs that passed SetThreshold validation.
			continue
		}

		config := state.config
		breached := (config.IsUpperBound && value > config.ThresholdValue) ||
			(!config.IsUpperBound && value < config.ThresholdValue)
		if !breached {
			continue
		}

		breach := Breach{
			Config:       config,
			Value:        value,
			Severity:     severityOf(value, config.ThresholdValue, config.IsUpperBound),
			HasFired:     state.hasFired,
			LastSeverity: state.lastSeverity,
		}
		if state.hasFired {
			breach.Elapsed = now.Sub(state.lastTriggered)
		}

		if e.policy.Suppress(breach) {
			e.logger.Debug("alert suppressed",
				"model_id", record.ModelID,
				"metric_name", metricName,
				"value", value,
				"severity", breach.Severity.String(),
			)
			continue
		}

		// Check-then-set stays atomic: update inside the lock.
		state.lastTriggered = now
		state.hasFired = true
		state.lastSeverity = breach.Severity

		firings = append(firings, firing{
			config:   config,
			value:    value,
			severity: breach.Severity,
			handlers: e.handlersFor(config.NotificationChannels),
		})
	}
	e.mu.Unlock()

	for _, f := range firings {
		e.dispatch(f)
	}
}

// handlersFor snapshots the handlers for the given channels.
// Must be called with the engine lock held.
func (e *Engine) handlersFor(channels []string) map[string]Handler {
	snapshot := make(map[string]Handler, len(channels))
	for _, channel := range channels {
		if handler, ok := e.handlers[channel]; ok {
			snapshot[channel] = handler
		} else {
			snapshot[channel] = nil
		}
	}
	return snapshot
}

// dispatch invokes every channel handler for one fired alert.
// Handler panics are isolated: they are logged at error level and do not
// prevent the remaining handlers from running.
func (e *Engine) dispatch(f firing) {
	direction := "above"
	if !f.config.IsUpperBound {
		direction = "below"
	}
	message := fmt.Sprintf("model %s: %s %.4f is %s threshold %.4f (severity: %s)",
		f.config.ModelID, f.config.MetricName, f.value, direction,
		f.config.ThresholdValue, f.severity)

	for channel, handler := range f.handlers {
		if handler == nil {
			e.logger.Warn("no handler registered for alert channel",
				"channel", channel,
				"model_id", f.config.ModelID,
				"metric_name", f.config.MetricName,
			)
			continue
		}
		e.invoke(channel, handler, message, f)
	}

	e.logger.Info("alert dispatched",
		"model_id", f.config.ModelID,
		"metric_name", f.config.MetricName,
		"value", f.value,
		"threshold", f.config.ThresholdValue,
		"severity", f.severity.String(),
	)
}

// invoke runs one handler with panic isolation.
func (e *Engine) invoke(channel string, handler Handler, message string, f firing) {
	defer func() {
		if r := recover(); r != nil {
			e.logger.Error("alert handler panicked",
				"channel", channel,
				"model_id", f.config.ModelID,
				"metric_name", f.config.MetricName,
				"panic", r,
			)
		}
	}()

	handler(message, f.config, f.value)
}
