package config

import (
	"fmt"
	"math"

	"kepler-hq/optic/pkg/metrics"

	"github.com/robfig/cron/v3"
)

// Validate checks the configuration for errors. It should be called after
// ApplyDefaults so that defaulted fields are present.
func Validate(cfg *Config) error {
	if err := validateStorage(&cfg.Storage); err != nil {
		return err
	}
	if err := validateRetention(&cfg.Retention); err != nil {
		return err
	}
	if err := validateTelemetry(&cfg.Telemetry); err != nil {
		return err
	}
	if err := validateModels(cfg.Models); err != nil {
		return err
	}
	return validateAlerts(cfg.Alerts)
}

func validateStorage(s *StorageConfig) error {
	switch s.Backend {
	case "memory":
		return nil
	case "sqlite":
		if s.SQLite.Path == "" {
			return fmt.Errorf("storage.sqlite.path is required when backend is sqlite")
		}
		switch s.SQLite.Driver {
		case "sqlite3", "sqlite":
		default:
			return fmt.Errorf("storage.sqlite.driver must be %q or %q, got %q",
				"sqlite3", "sqlite", s.SQLite.Driver)
		}
		if s.SQLite.MaxOpenConns < 1 {
			return fmt.Errorf("storage.sqlite.max_open_conns must be at least 1, got %d",
				s.SQLite.MaxOpenConns)
		}
		if s.SQLite.BusyTimeout < 0 {
			return fmt.Errorf("storage.sqlite.busy_timeout must not be negative")
		}
		return nil
	default:
		return fmt.Errorf("storage.backend must be %q or %q, got %q",
			"memory", "sqlite", s.Backend)
	}
}

func validateRetention(r *RetentionConfig) error {
	if r.Days < 0 {
		return fmt.Errorf("retention.days must not be negative, got %d", r.Days)
	}
	if r.PruneSchedule != "" {
		if _, err := cron.ParseStandard(r.PruneSchedule); err != nil {
			return fmt.Errorf("retention.prune_schedule is not a valid cron expression: %w", err)
		}
	}
	if r.ArchiveBeforeDelete && r.ArchivePath == "" {
		return fmt.Errorf("retention.archive_path is required when archive_before_delete is set")
	}
	return nil
}

func validateTelemetry(t *TelemetryConfig) error {
	switch t.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("telemetry.logging.level must be one of debug, info, warn, error; got %q",
			t.Logging.Level)
	}
	switch t.Logging.Format {
	case "json", "text":
	default:
		return fmt.Errorf("telemetry.logging.format must be %q or %q, got %q",
			"json", "text", t.Logging.Format)
	}
	return nil
}

func validateModels(models []ModelConfig) error {
	seen := make(map[string]struct{}, len(models))
	for i, m := range models {
		if m.ID == "" {
			return fmt.Errorf("models[%d].id is required", i)
		}
		if _, dup := seen[m.ID]; dup {
			return fmt.Errorf("models[%d]: duplicate model id %q", i, m.ID)
		}
		seen[m.ID] = struct{}{}
		if m.PromptCostPer1k < 0 || m.CompletionCostPer1k < 0 {
			return fmt.Errorf("models[%d] (%s): costs must not be negative", i, m.ID)
		}
	}
	return nil
}

func validateAlerts(alerts []AlertConfig) error {
	for i, a := range alerts {
		if a.ModelID == "" {
			return fmt.Errorf("alerts[%d].model_id is required", i)
		}
		if !metrics.KnownMetric(a.Metric) {
			return fmt.Errorf("alerts[%d]: unknown metric %q", i, a.Metric)
		}
		if math.IsNaN(a.Threshold) || math.IsInf(a.Threshold, 0) {
			return fmt.Errorf("alerts[%d] (%s/%s): threshold must be finite", i, a.ModelID, a.Metric)
		}
		if a.CooldownMinutes < 0 {
			return fmt.Errorf("alerts[%d] (%s/%s): cooldown_minutes must not be negative",
				i, a.ModelID, a.Metric)
		}
	}
	return nil
}
