package export

import (
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"kepler-hq/optic/pkg/metrics"
	"kepler-hq/optic/pkg/metrics/aggregate"
)

// CSVReportExporter exports a performance report to CSV: one Metric,Value
// row per aggregate field, grouped under section header rows (Time,
// Token, Memory, System, Cost Metrics).
type CSVReportExporter struct{}

// NewCSVReportExporter creates a new CSV report exporter.
func NewCSVReportExporter() *CSVReportExporter {
	return &CSVReportExporter{}
}

// section is one header row plus its metric rows.
type section struct {
	name string
	rows [][2]string
}

// Export writes the report to the provided writer in CSV format.
func (e *CSVReportExporter) Export(ctx context.Context, report *aggregate.PerformanceReport, w io.Writer) error {
	writer := csv.NewWriter(w)
	defer writer.Flush()

	if err := writer.Write([]string{"Metric", "Value"}); err != nil {
		return metrics.NewExportError("csv", report.NumInferences, err)
	}

	header := [][2]string{
		{"model_id", report.ModelID},
		{"num_inferences", strconv.Itoa(report.NumInferences)},
	}
	for _, row := range header {
		if err := writer.Write(row[:]); err != nil {
			return metrics.NewExportError("csv", report.NumInferences, err)
		}
	}

	for _, s := range e.sections(report) {
		if err := writer.Write([]string{s.name, ""}); err != nil {
			return metrics.NewExportError("csv", report.NumInferences, err)
		}
		for _, row := range s.rows {
			if err := writer.Write(row[:]); err != nil {
				return metrics.NewExportError("csv", report.NumInferences, err)
			}
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return metrics.NewExportError("csv", report.NumInferences, err)
	}

	return nil
}

// sections lays out the report fields under their section headers,
// matching the aggregate field names.
func (e *CSVReportExporter) sections(report *aggregate.PerformanceReport) []section {
	f := formatFloat

	return []section{
		{
			name: "Time Metrics",
			rows: [][2]string{
				{"avg_inference_time_seconds", f(report.AvgInferenceTimeSeconds)},
				{"p50_inference_time_seconds", f(report.P50InferenceTimeSeconds)},
				{"p90_inference_time_seconds", f(report.P90InferenceTimeSeconds)},
				{"p95_inference_time_seconds", f(report.P95InferenceTimeSeconds)},
				{"p99_inference_time_seconds", f(report.P99InferenceTimeSeconds)},
				{"avg_latency_ms", f(report.AvgLatencyMs)},
				{"avg_time_to_first_token_seconds", f(report.AvgTimeToFirstTokenSeconds)},
				{"avg_tokens_per_second", f(report.AvgTokensPerSecond)},
			},
		},
		{
			name: "Token Metrics",
			rows: [][2]string{
				{"total_input_tokens", strconv.Itoa(report.TotalInputTokens)},
				{"total_output_tokens", strconv.Itoa(report.TotalOutputTokens)},
				{"total_tokens", strconv.Itoa(report.TotalTokens)},
				{"avg_input_tokens", f(report.AvgInputTokens)},
				{"avg_output_tokens", f(report.AvgOutputTokens)},
			},
		},
		{
			name: "Memory Metrics",
			rows: [][2]string{
				{"avg_memory_usage_mb", f(report.AvgMemoryUsageMb)},
				{"peak_memory_usage_mb", f(report.PeakMemoryUsageMb)},
			},
		},
		{
			name: "System Metrics",
			rows: [][2]string{
				{"avg_cpu_percent", f(report.AvgCPUPercent)},
				{"avg_gpu_percent", f(report.AvgGPUPercent)},
				{"error_rate", f(report.ErrorRate)},
				{"cache_hit_rate", f(report.CacheHitRate)},
			},
		},
		{
			name: "Cost Metrics",
			rows: [][2]string{
				{"total_prompt_cost", f(report.TotalPromptCost)},
				{"total_completion_cost", f(report.TotalCompletionCost)},
				{"total_cost", f(report.TotalCost)},
				{"cost_per_1k_tokens", f(report.CostPer1kTokens)},
				{"currency", report.Currency},
			},
		},
	}
}

// formatFloat renders a float with six decimal places, enough for
// sub-cent cost values.
func formatFloat(v float64) string {
	return fmt.Sprintf("%.6f", v)
}
