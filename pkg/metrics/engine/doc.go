// Package engine provides the metrics facade tying storage, tracking,
// aggregation, alerting, and export together behind one API.
//
// # Lifecycle
//
//	eng := engine.New(engine.WithStore(store))
//	eng.RegisterModel("gpt-4", 0.03, 0.06)
//
//	t, err := eng.StartInference("gpt-4", prompt, 0)
//	...
//	eng.RecordFirstToken(t)
//	...
//	record, err := eng.StopInference(ctx, t, output, 0)
//
// StopInference appends the derived record to the store and evaluates it
// against configured alert thresholds synchronously, so by the time it
// returns the record is queryable and any alerts have been dispatched.
//
// # Configuration
//
// Configure applies a loaded config's model rate cards and alert
// thresholds in one call. Because SetAlertThreshold replaces per
// (model, metric) key, Configure is also the reload path:
//
//	watcher.Watch(ctx, func(cfg *config.Config) { eng.Configure(cfg) })
//
// # Observers
//
// Observers registered via WithObserver see every recorded metric and
// every dispatched alert. The Prometheus bridge in pkg/telemetry/prom is
// the standard observer.
package engine
