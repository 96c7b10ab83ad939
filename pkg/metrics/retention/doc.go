// Package retention enforces age-based retention on stored metric
// records.
//
// The Pruner deletes records older than the configured retention period,
// optionally archiving them to JSON first. A cron-based Scheduler runs
// pruning automatically; one-off cleanup goes through the engine facade's
// CleanupOlderThan.
package retention
