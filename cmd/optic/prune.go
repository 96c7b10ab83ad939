package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"kepler-hq/optic/pkg/metrics/retention"
)

var pruneFlags struct {
	days    int
	archive bool
}

var pruneCmd = &cobra.Command{
	Use:   "prune",
	Short: "Delete metric records older than the retention period",
	Long: `Delete metric records older than the configured retention period.

By default the retention settings come from the configuration file. The
--days flag overrides the retention period for a one-off prune.

Examples:
  # Prune using the configured retention
  optic prune

  # One-off prune of everything older than 30 days, archiving first
  optic prune --days 30 --archive`,
	RunE: runPrune,
}

func init() {
	rootCmd.AddCommand(pruneCmd)

	pruneCmd.Flags().IntVar(&pruneFlags.days, "days", 0, "override retention period in days")
	pruneCmd.Flags().BoolVar(&pruneFlags.archive, "archive", false, "archive records to JSON before deleting")
}

func runPrune(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	store, err := openStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	retCfg := &retention.Config{
		RetentionDays:       cfg.Retention.Days,
		ArchiveBeforeDelete: cfg.Retention.ArchiveBeforeDelete || pruneFlags.archive,
		ArchivePath:         cfg.Retention.ArchivePath,
	}
	if pruneFlags.days > 0 {
		retCfg.RetentionDays = pruneFlags.days
	}
	if retCfg.ArchiveBeforeDelete && retCfg.ArchivePath == "" {
		retCfg.ArchivePath = retention.DefaultConfig().ArchivePath
	}

	deleted, err := retention.NewPruner(store, retCfg).Prune(context.Background())
	if err != nil {
		return err
	}

	fmt.Printf("Deleted %d record(s) older than %d day(s)\n", deleted, retCfg.RetentionDays)
	return nil
}
