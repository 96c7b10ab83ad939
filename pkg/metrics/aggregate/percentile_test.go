package aggregate

import "testing"

func TestPercentileNearestRank(t *testing.T) {
	values := make([]float64, 100)
	for i := range values {
		values[i] = float64(i + 1) // 1..100
	}

	tests := []struct {
		name string
		p    float64
		want float64
	}{
		{"p50 selects index 50", 0.50, 51},
		{"p90", 0.90, 91},
		{"p95", 0.95, 96},
		{"p99", 0.99, 100},
		{"p0 clamps to first", 0, 1},
		{"p100 clamps to last", 1.0, 100},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Percentile(values, tt.p); got != tt.want {
				t.Errorf("Percentile(p=%v) = %v, want %v", tt.p, got, tt.want)
			}
		})
	}
}

func TestPercentileEdgeCases(t *testing.T) {
	if got := Percentile(nil, 0.5); got != 0 {
		t.Errorf("empty input = %v, want 0", got)
	}
	if got := Percentile([]float64{42}, 0.99); got != 42 {
		t.Errorf("single value = %v, want 42", got)
	}
}

func TestPercentileDoesNotMutateInput(t *testing.T) {
	values := []float64{3, 1, 2}
	Percentile(values, 0.5)
	if values[0] != 3 || values[1] != 1 || values[2] != 2 {
		t.Errorf("input mutated: %v", values)
	}
}

func TestSafeMean(t *testing.T) {
	tests := []struct {
		name   string
		values []float64
		want   float64
	}{
		{"all positive", []float64{1, 2, 3}, 2},
		{"zeros excluded", []float64{0, 2, 0, 4}, 3},
		{"negatives excluded", []float64{-5, 10}, 10},
		{"no positives", []float64{0, 0, -1}, 0},
		{"empty", nil, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := safeMean(tt.values); got != tt.want {
				t.Errorf("safeMean(%v) = %v, want %v", tt.values, got, tt.want)
			}
		})
	}
}

func TestMaxValue(t *testing.T) {
	if got := maxValue([]float64{1, 9, 4}); got != 9 {
		t.Errorf("maxValue = %v, want 9", got)
	}
	if got := maxValue(nil); got != 0 {
		t.Errorf("maxValue(nil) = %v, want 0", got)
	}
}
