package main

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"kepler-hq/optic/pkg/metrics/aggregate"
	"kepler-hq/optic/pkg/metrics/export"
)

var exportFlags struct {
	model  string
	format string
	output string
	pretty bool
}

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export metrics to JSON or CSV",
	Long: `Export a model's metrics to a file or stdout.

JSON exports the raw metric records. CSV exports the aggregated
performance report grouped under section headers.

Examples:
  # Raw records to a JSON file
  optic export --model gpt-4 --format json --output metrics.json

  # Aggregated report as CSV to stdout
  optic export --model gpt-4 --format csv`,
	RunE: runExport,
}

func init() {
	rootCmd.AddCommand(exportCmd)

	exportCmd.Flags().StringVar(&exportFlags.model, "model", "", "model identifier (required)")
	exportCmd.Flags().StringVar(&exportFlags.format, "format", "json", "output format: json, csv")
	exportCmd.Flags().StringVarP(&exportFlags.output, "output", "o", "", "output file (default: stdout)")
	exportCmd.Flags().BoolVar(&exportFlags.pretty, "pretty", true, "pretty-print JSON output")
}

func runExport(cmd *cobra.Command, args []string) error {
	if exportFlags.model == "" {
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

	out := os.Stdout
	if exportFlags.output != "" {
		f, err := os.Create(exportFlags.output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		out = f
	}

	ctx := context.Background()

	switch exportFlags.format {
	case "json":
		records, err := store.Query(ctx, exportFlags.model, nil)
		if err != nil {
			return err
		}
		return export.NewJSONExporter(exportFlags.pretty).Export(ctx, records, out)

	case "csv":
		report, err := aggregate.NewEngine(store).Report(ctx, exportFlags.model, nil)
		if err != nil {
			return err
		}
		return export.NewCSVReportExporter().Export(ctx, report, out)

	default:
		return fmt.Errorf("unsupported format %q (expected json or csv)", exportFlags.format)
	}
}
