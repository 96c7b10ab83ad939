package prom

import (
	"github.com/prometheus/client_golang/prometheus"

	"kepler-hq/optic/pkg/config"
	"kepler-hq/optic/pkg/metrics"
)

// Collector bridges recorded inference metrics to Prometheus. It
// implements metrics.Observer and is attached to the engine via
// engine.WithObserver.
//
// Exported metrics (with the configured namespace/subsystem prefix):
//   - inferences_total: inference count by model and status
//   - inference_duration_seconds: total inference time histogram
//   - time_to_first_token_seconds: TTFT histogram
//   - tokens_total: token counters by model and type (prompt/completion)
//   - cost_total: accumulated cost by model
//   - cache_hits_total: cache hit count by model
//   - alerts_fired_total: dispatched alerts by model and metric
type Collector struct {
	enabled bool

	inferencesTotal   *prometheus.CounterVec
	inferenceDuration *prometheus.HistogramVec
	timeToFirstToken  *prometheus.HistogramVec
	tokensTotal       *prometheus.CounterVec
	costTotal         *prometheus.CounterVec
	cacheHitsTotal    *prometheus.CounterVec
	alertsFiredTotal  *prometheus.CounterVec

	registry *prometheus.Registry
}

// NewCollector creates a collector and registers its metrics with the
// given registry. A nil registry gets a fresh one.
func NewCollector(cfg *config.MetricsConfig, registry *prometheus.Registry) *Collector {
	if registry == nil {
		registry = prometheus.NewRegistry()
	}

	c := &Collector{
		enabled:  cfg.Enabled,
		registry: registry,

		inferencesTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "inferences_total",
				Help:      "Total number of inferences recorded",
			},
			[]string{"model", "status"},
		),

		inferenceDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "inference_duration_seconds",
				Help:      "Total inference duration in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"model"},
		),

		timeToFirstToken: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "time_to_first_token_seconds",
				Help:      "Time to first token in seconds",
				Buckets:   cfg.DurationBuckets,
			},
			[]string{"model"},
		),

		tokensTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "tokens_total",
				Help:      "Total number of tokens processed",
			},
			[]string{"model", "type"},
		),

		costTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cost_total",
				Help:      "Accumulated inference cost",
			},
			[]string{"model"},
		),

		cacheHitsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "cache_hits_total",
				Help:      "Total number of cache hits",
			},
			[]string{"model"},
		),

		alertsFiredTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: cfg.Namespace,
				Subsystem: cfg.Subsystem,
				Name:      "alerts_fired_total",
				Help:      "Total number of alerts dispatched",
			},
			[]string{"model", "metric"},
		),
	}

	registry.MustRegister(
		c.inferencesTotal,
		c.inferenceDuration,
		c.timeToFirstToken,
		c.tokensTotal,
		c.costTotal,
		c.cacheHitsTotal,
		c.alertsFiredTotal,
	)

	return c
}

// ObserveRecord implements metrics.Observer.
func (c *Collector) ObserveRecord(record *metrics.MetricRecord) {
	if !c.enabled {
		return
	}

	status := "success"
	if record.ErrorOccurred {
		status = "error"
	}

	c.inferencesTotal.WithLabelValues(record.ModelID, status).Inc()
	c.inferenceDuration.WithLabelValues(record.ModelID).Observe(record.TotalTimeSeconds)

	if record.TimeToFirstTokenSeconds > 0 {
		c.timeToFirstToken.WithLabelValues(record.ModelID).Observe(record.TimeToFirstTokenSeconds)
	}

	if record.Tokens.InputTokens > 0 {
		c.tokensTotal.WithLabelValues(record.ModelID, "prompt").Add(float64(record.Tokens.InputTokens))
	}
	if record.Tokens.OutputTokens > 0 {
		c.tokensTotal.WithLabelValues(record.ModelID, "completion").Add(float64(record.Tokens.OutputTokens))
	}

	if cost := record.TotalCost(); cost > 0 {
		c.costTotal.WithLabelValues(record.ModelID).Add(cost)
	}

	if record.CacheHit {
		c.cacheHitsTotal.WithLabelValues(record.ModelID).Inc()
	}
}

// ObserveAlert implements metrics.Observer.
func (c *Collector) ObserveAlert(modelID, metricName string, value float64) {
	if !c.enabled {
		return
	}

	c.alertsFiredTotal.WithLabelValues(modelID, metricName).Inc()
}

// Registry returns the Prometheus registry backing this collector. Use it
// to expose a /metrics endpoint:
//
//	http.Handle("/metrics", promhttp.HandlerFor(
//		collector.Registry(),
//		promhttp.HandlerOpts{},
//	))
func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}
