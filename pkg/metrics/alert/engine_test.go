package alert

import (
	"errors"
	"math"
	"strings"
	"testing"
	"time"

	"kepler-hq/optic/pkg/metrics"
)

type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

// fired captures one handler invocation.
type fired struct {
	message string
	config  *Config
	value   float64
}

func latencyRecord(modelID string, latencyMs float64) *metrics.MetricRecord {
	return &metrics.MetricRecord{
		ModelID:   modelID,
		LatencyMs: latencyMs,
	}
}

func TestSetThresholdValidation(t *testing.T) {
	engine := NewEngine()

	tests := []struct {
		name       string
		modelID    string
		metricName string
		threshold  float64
		cooldown   int
		wantErr    bool
	}{
		{"valid", "m1", metrics.MetricLatencyMs, 200, 5, false},
		{"empty model", "", metrics.MetricLatencyMs, 200, 5, true},
		{"unknown metric", "m1", "bogus_metric", 200, 5, true},
		{"nan threshold", "m1", metrics.MetricLatencyMs, math.NaN(), 5, true},
		{"inf threshold", "m1", metrics.MetricLatencyMs, math.Inf(1), 5, true},
		{"negative cooldown", "m1", metrics.MetricLatencyMs, 200, -1, true},
		{"zero cooldown ok", "m1", metrics.MetricLatencyMs, 200, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := engine.SetThreshold(tt.modelID, tt.metricName, tt.threshold, true, tt.cooldown, nil)
			if (err != nil) != tt.wantErr {
				t.Errorf("SetThreshold error = %v, wantErr %v", err, tt.wantErr)
			}
			if tt.wantErr {
				var configErr *metrics.ConfigError
				if !errors.As(err, &configErr) {
					t.Errorf("error type = %T, want ConfigError", err)
				}
			}
		})
	}
}

func TestRegisterHandlerDuplicate(t *testing.T) {
	engine := NewEngine()

	handler := func(message string, config *Config, value float64) {}
	if err := engine.RegisterHandler("log", handler); err != nil {
		t.Fatalf("first RegisterHandler failed: %v", err)
	}

	err := engine.RegisterHandler("log", handler)
	var exists *metrics.HandlerExistsError
	if !errors.As(err, &exists) {
		t.Fatalf("duplicate RegisterHandler = %v, want HandlerExistsError", err)
	}
	if exists.Channel != "log" {
		t.Errorf("error channel = %q, want log", exists.Channel)
	}
}

func TestEvaluateStrictInequality(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock))

	var alerts []fired
	if err := engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	}); err != nil {
		t.Fatalf("RegisterHandler failed: %v", err)
	}

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 0, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	// Equality never triggers.
	engine.Evaluate(latencyRecord("m1", 200))
	if len(alerts) != 0 {
		t.Fatalf("alert fired on equality, want none")
	}

	// Strictly above does.
	engine.Evaluate(latencyRecord("m1", 200.01))
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if alerts[0].value != 200.01 {
		t.Errorf("alert value = %v, want 200.01", alerts[0].value)
	}
	if !strings.Contains(alerts[0].message, "above threshold") {
		t.Errorf("message = %q, want it to mention above threshold", alerts[0].message)
	}
}

func TestEvaluateLowerBound(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock))

	var alerts []fired
	engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	})

	record := &metrics.MetricRecord{
		ModelID:          "m1",
		TotalTimeSeconds: 2.0,
		Tokens:           metrics.TokenUsage{OutputTokens: 10},
	}

	// Throughput 5 tokens/sec, threshold 20 lower-bound.
	if err := engine.SetThreshold("m1", metrics.MetricTokensPerSecond, 20, false, 0, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	engine.Evaluate(record)
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}
	if !strings.Contains(alerts[0].message, "below threshold") {
		t.Errorf("message = %q, want it to mention below threshold", alerts[0].message)
	}
}

func TestEvaluateCooldownSuppression(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock))

	var alerts []fired
	engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	})

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 5, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	// t=0: breach fires.
	engine.Evaluate(latencyRecord("m1", 250))
	// t=1min: breach suppressed by cooldown.
	clock.advance(time.Minute)
	engine.Evaluate(latencyRecord("m1", 300))
	// t=6min: cooldown expired, fires again.
	clock.advance(5 * time.Minute)
	engine.Evaluate(latencyRecord("m1", 350))

	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2 (cooldown must suppress the middle breach)", len(alerts))
	}
	if alerts[0].value != 250 || alerts[1].value != 350 {
		t.Errorf("alert values = %v/%v, want 250/350", alerts[0].value, alerts[1].value)
	}
}

func TestEvaluateSeverityOverrideBreaksCooldown(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock), WithPolicy(SeverityOverridePolicy{}))

	var alerts []fired
	engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	})

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 10, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	// Low-severity breach fires and opens the cooldown.
	engine.Evaluate(latencyRecord("m1", 210))
	// Same severity inside cooldown stays suppressed.
	clock.advance(time.Minute)
	engine.Evaluate(latencyRecord("m1", 220))
	// Critical spike (>2x) breaks through.
	clock.advance(time.Minute)
	engine.Evaluate(latencyRecord("m1", 500))

	if len(alerts) != 2 {
		t.Fatalf("got %d alerts, want 2 (critical spike must break through)", len(alerts))
	}
	if alerts[1].value != 500 {
		t.Errorf("breakthrough value = %v, want 500", alerts[1].value)
	}
}

func TestSetThresholdReplacesState(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock))

	var alerts []fired
	engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	})

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 60, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	engine.Evaluate(latencyRecord("m1", 250))
	if len(alerts) != 1 {
		t.Fatalf("got %d alerts, want 1", len(alerts))
	}

	// Replacing the config resets the cooldown state entirely, so the
	// next breach fires despite the long cooldown.
	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 60, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}
	engine.Evaluate(latencyRecord("m1", 250))
	if len(alerts) != 2 {
		t.Fatalf("got %d alerts after replace, want 2", len(alerts))
	}
}

func TestRemoveThreshold(t *testing.T) {
	engine := NewEngine()

	var alerts []fired
	engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	})

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 0, []string{"test"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}
	engine.RemoveThreshold("m1", metrics.MetricLatencyMs)

	engine.Evaluate(latencyRecord("m1", 9999))
	if len(alerts) != 0 {
		t.Errorf("alert fired after RemoveThreshold")
	}

	// Removing an absent key is a no-op.
	engine.RemoveThreshold("m1", metrics.MetricLatencyMs)
	engine.RemoveThreshold("never-seen", metrics.MetricLatencyMs)
}

func TestEvaluateHandlerPanicIsolated(t *testing.T) {
	engine := NewEngine()

	var survived bool
	engine.RegisterHandler("panicky", func(message string, config *Config, value float64) {
		panic("handler exploded")
	})
	engine.RegisterHandler("steady", func(message string, config *Config, value float64) {
		survived = true
	})

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 0,
		[]string{"panicky", "steady"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	// Must not panic out of Evaluate.
	engine.Evaluate(latencyRecord("m1", 500))

	if !survived {
		t.Error("panicking handler prevented the other handler from running")
	}
}

func TestEvaluateUnregisteredChannel(t *testing.T) {
	engine := NewEngine()

	if err := engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 0,
		[]string{"nobody-home"}); err != nil {
		t.Fatalf("SetThreshold failed: %v", err)
	}

	// Dispatching to an unregistered channel logs a warning and moves on.
	engine.Evaluate(latencyRecord("m1", 500))
}

func TestEvaluateIndependentKeys(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)}
	engine := NewEngine(WithClock(clock))

	var alerts []fired
	engine.RegisterHandler("test", func(message string, config *Config, value float64) {
		alerts = append(alerts, fired{message, config, value})
	})

	engine.SetThreshold("m1", metrics.MetricLatencyMs, 200, true, 60, []string{"test"})
	engine.SetThreshold("m2", metrics.MetricLatencyMs, 200, true, 60, []string{"test"})

	// A cooldown on m1 does not suppress m2.
	engine.Evaluate(latencyRecord("m1", 300))
	engine.Evaluate(latencyRecord("m2", 300))

	if len(alerts) != 2 {
		t.Errorf("got %d alerts, want 2 (cooldowns are per key)", len(alerts))
	}
}
