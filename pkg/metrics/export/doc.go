// Package export provides metric exporters.
//
// # Formats
//
//   - JSON: the raw MetricRecord array, with optional pretty-printing.
//   - CSV: the aggregated performance report as Metric,Value rows grouped
//     under section headers (Time Metrics, Token Metrics, Memory Metrics,
//     System Metrics, Cost Metrics).
//
// # Usage
//
//	exporter := export.NewCSVReportExporter()
//	err := exporter.Export(ctx, report, os.Stdout)
package export
