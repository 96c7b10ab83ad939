// Package telemetry groups the observability subpackages for Optic.
//
// # Components
//
//   - logging: structured slog setup from the telemetry configuration
//   - prom: a Prometheus bridge implementing metrics.Observer
//
// # Usage
//
//	if err := logging.Setup(&cfg.Telemetry.Logging, false); err != nil {
//		return err
//	}
//	collector := prom.NewCollector(&cfg.Telemetry.Metrics, prometheus.NewRegistry())
//	eng := engine.New(engine.WithObserver(collector))
//
// Every record published through the engine is then counted and
// bucketed per model, and every fired alert increments a counter
// labeled by model and metric.
package telemetry
