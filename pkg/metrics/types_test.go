package metrics

import (
	"testing"
	"time"
)

func TestMetricValue(t *testing.T) {
	record := &MetricRecord{
		TotalTimeSeconds:        2.0,
		LatencyMs:               150.0,
		TimeToFirstTokenSeconds: 0.15,
		Tokens: TokenUsage{
			InputTokens:  100,
			OutputTokens: 50,
		},
		MemoryUsageMb:  512.0,
		CPUPercent:     42.5,
		GPUPercent:     80.0,
		PromptCost:     0.02,
		CompletionCost: 0.04,
	}

	tests := []struct {
		name    string
		metric  string
		want    float64
		wantOK  bool
	}{
		{"latency", MetricLatencyMs, 150.0, true},
		{"total time", MetricTotalTime, 2.0, true},
		{"ttft", MetricTimeToFirstToken, 0.15, true},
		{"tokens per second", MetricTokensPerSecond, 25.0, true},
		{"input tokens", MetricInputTokens, 100, true},
		{"output tokens", MetricOutputTokens, 50, true},
		{"total tokens", MetricTotalTokens, 150, true},
		{"memory", MetricMemoryUsageMb, 512.0, true},
		{"cpu", MetricCPUPercent, 42.5, true},
		{"gpu", MetricGPUPercent, 80.0, true},
		{"prompt cost", MetricPromptCost, 0.02, true},
		{"completion cost", MetricCompletionCost, 0.04, true},
		{"total cost", MetricTotalCost, 0.06, true},
		{"unknown", "no_such_metric", 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := record.MetricValue(tt.metric)
			if ok != tt.wantOK {
				t.Fatalf("MetricValue(%q) ok = %v, want %v", tt.metric, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("MetricValue(%q) = %v, want %v", tt.metric, got, tt.want)
			}
		})
	}
}

func TestKnownMetric(t *testing.T) {
	if !KnownMetric(MetricLatencyMs) {
		t.Error("expected latency_ms to be a known metric")
	}
	if KnownMetric("bogus") {
		t.Error("expected bogus to be unknown")
	}
}

func TestTokensPerSecondZeroTime(t *testing.T) {
	record := &MetricRecord{
		Tokens: TokenUsage{OutputTokens: 100},
	}
	if got := record.TokensPerSecond(); got != 0 {
		t.Errorf("TokensPerSecond with zero time = %v, want 0", got)
	}
}

func TestTotalTokensDerived(t *testing.T) {
	u := TokenUsage{InputTokens: 7, OutputTokens: 13}
	if got := u.TotalTokens(); got != 20 {
		t.Errorf("TotalTokens = %d, want 20", got)
	}
}

func TestSystemClock(t *testing.T) {
	before := time.Now()
	got := SystemClock{}.Now()
	after := time.Now()

	if got.Before(before) || got.After(after) {
		t.Errorf("SystemClock.Now() = %v, not between %v and %v", got, before, after)
	}
}
