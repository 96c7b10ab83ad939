package retention

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"kepler-hq/optic/pkg/metrics"
	"kepler-hq/optic/pkg/metrics/export"
)

// Config contains configuration for the retention pruner.
type Config struct {
	// RetentionDays is the number of days to retain metric records.
	// 0 means keep records forever (no pruning).
	RetentionDays int

	// PruneSchedule is a cron expression for scheduling pruning.
	// Example: "0 3 * * *" (daily at 3 AM). Empty disables the scheduler.
	PruneSchedule string

	// ArchiveBeforeDelete enables archiving records to JSON before deletion.
	ArchiveBeforeDelete bool

	// ArchivePath is the directory to store archived records.
	ArchivePath string
}

// DefaultConfig returns the default retention configuration.
func DefaultConfig() *Config {
	return &Config{
		RetentionDays:       90,
		PruneSchedule:       "0 3 * * *",
		ArchiveBeforeDelete: false,
		ArchivePath:         "data/archives/",
	}
}

// Pruner enforces the retention policy on stored metric records.
type Pruner struct {
	store     metrics.Store
	config    *Config
	logger    *slog.Logger
	scheduler *Scheduler
}

// NewPruner creates a new retention pruner.
func NewPruner(store metrics.Store, config *Config) *Pruner {
	if config == nil {
		config = DefaultConfig()
	}

	pruner := &Pruner{
		store:  store,
		config: config,
		logger: slog.Default().With("component", "metrics.retention"),
	}
	pruner.scheduler = NewScheduler(pruner)

	return pruner
}

// Prune deletes metric records older than the retention period.
// Returns the number of records deleted.
func (p *Pruner) Prune(ctx context.Context) (int64, error) {
	if p.config.RetentionDays <= 0 {
		p.logger.Debug("retention disabled, nothing to prune")
		return 0, nil
	}

	age := time.Duration(p.config.RetentionDays) * 24 * time.Hour

	if p.config.ArchiveBeforeDelete {
		if err := p.archive(ctx, age); err != nil {
			return 0, metrics.NewRetentionError(p.config.RetentionDays, err)
		}
	}

	deleted, err := p.store.CleanupOlderThan(ctx, age)
	if err != nil {
		return 0, metrics.NewRetentionError(p.config.RetentionDays, err)
	}

	if deleted > 0 {
		p.logger.Info("pruned metric records",
			"deleted_count", deleted,
			"retention_days", p.config.RetentionDays,
		)
	} else {
		p.logger.Debug("no records pruned",
			"retention_days", p.config.RetentionDays,
		)
	}

	return deleted, nil
}

// archive exports soon-to-be-deleted records to a JSON file per model.
func (p *Pruner) archive(ctx context.Context, age time.Duration) error {
	cutoff := time.Now().Add(-age)

	models, err := p.store.Models(ctx)
	if err != nil {
		return fmt.Errorf("failed to list models for archiving: %w", err)
	}

	var toArchive []*metrics.MetricRecord
	for _, modelID := range models {
		records, err := p.store.Query(ctx, modelID, &metrics.Query{EndTime: &cutoff})
		if err != nil {
			return fmt.Errorf("failed to query records for archiving: %w", err)
		}
		toArchive = append(toArchive, records...)
	}

	if len(toArchive) == 0 {
		p.logger.Debug("no records to archive")
		return nil
	}

	if err := os.MkdirAll(p.config.ArchivePath, 0755); err != nil {
		return fmt.Errorf("failed to create archive directory: %w", err)
	}

	archiveFile := filepath.Join(p.config.ArchivePath,
		fmt.Sprintf("metrics-%s.json", time.Now().Format("2006-01-02-150405")))
	f, err := os.Create(archiveFile)
	if err != nil {
		return fmt.Errorf("failed to create archive file: %w", err)
	}
	defer f.Close()

	exporter := export.NewJSONExporter(true)
	if err := exporter.Export(ctx, toArchive, f); err != nil {
		return fmt.Errorf("failed to export records to archive: %w", err)
	}

	p.logger.Info("metric records archived",
		"archive_file", archiveFile,
		"record_count", len(toArchive),
	)

	return nil
}

// Start starts the automatic pruning scheduler.
// Call this when starting the application.
func (p *Pruner) Start(ctx context.Context) error {
	return p.scheduler.Start(ctx)
}

// Stop stops the automatic pruning scheduler.
// Call this during graceful shutdown.
func (p *Pruner) Stop() {
	p.scheduler.Stop()
}

// NextPruning returns the time of the next scheduled pruning.
func (p *Pruner) NextPruning() *time.Time {
	return p.scheduler.NextRun()
}
