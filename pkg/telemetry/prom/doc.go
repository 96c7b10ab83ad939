// Package prom exports recorded inference metrics to Prometheus.
//
// The Collector implements metrics.Observer. Attach it to the engine and
// serve its registry over HTTP:
//
//	collector := prom.NewCollector(&cfg.Telemetry.Metrics, nil)
//	eng := engine.New(engine.WithObserver(collector))
package prom
