package export

import (
	"context"
	"encoding/csv"
	"strings"
	"testing"

	"kepler-hq/optic/pkg/metrics/aggregate"
)

func TestCSVReportExport(t *testing.T) {
	report := &aggregate.PerformanceReport{
		ModelID:                 "gpt-4",
		NumInferences:           42,
		AvgInferenceTimeSeconds: 1.5,
		P50InferenceTimeSeconds: 1.25,
		AvgLatencyMs:            1500,
		TotalInputTokens:        1000,
		TotalOutputTokens:       500,
		TotalTokens:             1500,
		AvgMemoryUsageMb:        256,
		PeakMemoryUsageMb:       512,
		ErrorRate:               0.25,
		TotalPromptCost:         0.02,
		TotalCompletionCost:     0.04,
		TotalCost:               0.06,
		Currency:                "USD",
	}

	var buf strings.Builder
	if err := NewCSVReportExporter().Export(context.Background(), report, &buf); err != nil {
		t.Fatalf("Export failed: %v", err)
	}

	rows, err := csv.NewReader(strings.NewReader(buf.String())).ReadAll()
	if err != nil {
		t.Fatalf("output is not valid CSV: %v", err)
	}

	if len(rows) == 0 || rows[0][0] != "Metric" || rows[0][1] != "Value" {
		t.Fatalf("header row = %v, want [Metric Value]", rows[0])
	}

	byMetric := make(map[string]string, len(rows))
	var sections []string
	for _, row := range rows[1:] {
		if row[1] == "" {
			sections = append(sections, row[0])
			continue
		}
		byMetric[row[0]] = row[1]
	}

	wantSections := []string{"Time Metrics", "Token Metrics", "Memory Metrics", "System Metrics", "Cost Metrics"}
	if len(sections) != len(wantSections) {
		t.Fatalf("sections = %v, want %v", sections, wantSections)
	}
	for i, want := range wantSections {
		if sections[i] != want {
			t.Errorf("section[%d] = %q, want %q", i, sections[i], want)
		}
	}

	checks := map[string]string{
		"model_id":                   "gpt-4",
		"num_inferences":             "42",
		"avg_inference_time_seconds": "1.500000",
		"p50_inference_time_seconds": "1.250000",
		"avg_latency_ms":             "1500.000000",
		"total_input_tokens":         "1000",
		"total_output_tokens":        "500",
		"total_tokens":               "1500",
		"peak_memory_usage_mb":       "512.000000",
		"error_rate":                 "0.250000",
		"total_cost":                 "0.060000",
		"currency":                   "USD",
	}
	for metric, want := range checks {
		if got, ok := byMetric[metric]; !ok {
			t.Errorf("metric %q missing from export", metric)
		} else if got != want {
			t.Errorf("%s = %q, want %q", metric, got, want)
		}
	}
}

func TestCSVReportExportEmptyReport(t *testing.T) {
	var buf strings.Builder
	err := NewCSVReportExporter().Export(context.Background(), &aggregate.PerformanceReport{ModelID: "m1"}, &buf)
	if err != nil {
		t.Fatalf("Export of empty report failed: %v", err)
	}

	if !strings.Contains(buf.String(), "num_inferences,0") {
		t.Error("empty report must export num_inferences,0")
	}
}
