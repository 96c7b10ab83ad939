package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"kepler-hq/optic/pkg/metrics"
	"kepler-hq/optic/pkg/metrics/aggregate"
)

var reportFlags struct {
	model  string
	models string
	since  time.Duration
	start  string
	end    string
	format string
}

var reportCmd = &cobra.Command{
	Use:   "report",
	Short: "Generate a performance report for a model",
	Long: `Generate an aggregated performance report for a model.

The report includes timing percentiles, token throughput, resource usage,
and cost statistics over the selected time range.

Examples:
  # All records for a model
  optic report --model gpt-4

  # Last 24 hours
  optic report --model gpt-4 --since 24h

  # Explicit time range, JSON output
  optic report --model gpt-4 \
    --start 2026-08-01T00:00:00Z --end 2026-08-22T00:00:00Z \
    --format json`,
	RunE: runReport,
}

var reportCompareCmd = &cobra.Command{
	Use:   "compare",
	Short: "Compare performance across models",
	Long: `Compare aggregated performance reports across several models over the
same time range.

Examples:
  optic report compare --models gpt-4,claude-3
  optic report compare --models gpt-4,claude-3 --since 168h --format json`,
	RunE: runCompare,
}

func init() {
	rootCmd.AddCommand(reportCmd)
	reportCmd.AddCommand(reportCompareCmd)

	reportCmd.Flags().StringVar(&reportFlags.model, "model", "", "model identifier (required)")
	reportCmd.Flags().DurationVar(&reportFlags.since, "since", 0, "look-back window (e.g. 24h); overrides --start")
	reportCmd.Flags().StringVar(&reportFlags.start, "start", "", "range start (RFC3339)")
	reportCmd.Flags().StringVar(&reportFlags.end, "end", "", "range end (RFC3339)")
	reportCmd.Flags().StringVar(&reportFlags.format, "format", "text", "output format: text, json")

	reportCompareCmd.Flags().StringVar(&reportFlags.models, "models", "", "comma-separated model identifiers (required)")
	reportCompareCmd.Flags().DurationVar(&reportFlags.since, "since", 0, "look-back window (e.g. 168h)")
	reportCompareCmd.Flags().StringVar(&reportFlags.start, "start", "", "range start (RFC3339)")
	reportCompareCmd.Flags().StringVar(&reportFlags.end, "end", "", "range end (RFC3339)")
	reportCompareCmd.Flags().StringVar(&reportFlags.format, "format", "text", "output format: text, json")
}

// rangeQuery builds a store query from an optional inclusive range.
func rangeQuery(start, end *time.Time) *metrics.Query {
	return &metrics.Query{StartTime: start, EndTime: end}
}

// timeRange resolves the --since / --start / --end flags into an optional
// inclusive range.
func timeRange() (*time.Time, *time.Time, error) {
	if reportFlags.since > 0 {
		start := time.Now().Add(-reportFlags.since)
		return &start, nil, nil
	}

	var start, end *time.Time
	if reportFlags.start != "" {
		t, err := time.Parse(time.RFC3339, reportFlags.start)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --start: %w", err)
		}
		start = &t
	}
	if reportFlags.end != "" {
		t, err := time.Parse(time.RFC3339, reportFlags.end)
		if err != nil {
			return nil, nil, fmt.Errorf("invalid --end: %w", err)
		}
		end = &t
	}
	return start, end, nil
}

func runReport(cmd *cobra.Command, args []string) error {
	if reportFlags.model == "" {
		return fmt.Errorf("--model is required")
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	start, end, err := timeRange()
	if err != nil {
		return err
	}

	ctx := context.Background()
	report, err := aggregate.NewEngine(store).Report(ctx, reportFlags.model, rangeQuery(start, end))
	if err != nil {
		return err
	}

	if reportFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(report)
	}

	printReport(report)
	return nil
}

func runCompare(cmd *cobra.Command, args []string) error {
	if reportFlags.models == "" {
		return fmt.Errorf("--models is required")
	}
	modelIDs := strings.Split(reportFlags.models, ",")
	for i := range modelIDs {
		modelIDs[i] = strings.TrimSpace(modelIDs[i])
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	start, end, err := timeRange()
	if err != nil {
		return err
	}

	ctx := context.Background()
	reports, err := aggregate.NewEngine(store).Compare(ctx, modelIDs, rangeQuery(start, end))
	if err != nil {
		return err
	}

	if reportFlags.format == "json" {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(reports)
	}

	for _, modelID := range modelIDs {
		printReport(reports[modelID])
		fmt.Println()
	}
	return nil
}

func printReport(r *aggregate.PerformanceReport) {
	fmt.Printf("Model: %s\n", r.ModelID)
	fmt.Printf("Inferences: %d\n", r.NumInferences)
	fmt.Printf("  Avg inference time:    %.4fs\n", r.AvgInferenceTimeSeconds)
	fmt.Printf("  p50 / p90 / p95 / p99: %.4f / %.4f / %.4f / %.4f s\n",
		r.P50InferenceTimeSeconds, r.P90InferenceTimeSeconds, r.P95InferenceTimeSeconds, r.P99InferenceTimeSeconds)
	fmt.Printf("  Avg latency:           %.2fms\n", r.AvgLatencyMs)
	fmt.Printf("  Avg TTFT:              %.4fs\n", r.AvgTimeToFirstTokenSeconds)
	fmt.Printf("  Avg tokens/sec:        %.2f\n", r.AvgTokensPerSecond)
	fmt.Printf("  Total tokens:          %d (in %d / out %d)\n",
		r.TotalTokens, r.TotalInputTokens, r.TotalOutputTokens)
	fmt.Printf("  Avg memory:            %.2f MB\n", r.AvgMemoryUsageMb)
	fmt.Printf("  Error rate:            %.2f%%\n", r.ErrorRate*100)
	fmt.Printf("  Cache hit rate:        %.2f%%\n", r.CacheHitRate*100)
	fmt.Printf("  Total cost:            %.6f\n", r.TotalCost)
	fmt.Printf("  Cost per 1k tokens:    %.6f\n", r.CostPer1kTokens)
}
