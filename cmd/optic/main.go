// Optic is a performance metrics and alerting engine for model inference.
//
// It tracks per-inference timing, token usage, resource consumption, and
// cost, aggregates them into performance reports, and fires threshold
// alerts with cooldown suppression.
//
// Usage:
//
//	# Performance report for a model
//	optic report --model gpt-4
//
//	# Compare two models over the last week
//	optic report compare --models gpt-4,claude-3 --since 168h
//
//	# Export raw records to JSON
//	optic export --model gpt-4 --format json --output metrics.json
//
//	# Prune records older than the retention period
//	optic prune
//
//	# Show version information
//	optic version
package main

func main() {
	Execute()
}
