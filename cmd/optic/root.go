package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/spf13/cobra"

	"kepler-hq/optic/pkg/config"
	"kepler-hq/optic/pkg/metrics"
	"kepler-hq/optic/pkg/metrics/storage"
	"kepler-hq/optic/pkg/telemetry/logging"
)

var (
	// Global flags
	cfgFile string
	verbose bool
)

var rootCmd = &cobra.Command{
	Use:   "optic",
	Short: "Optic - model inference performance metrics and alerting",
	Long: `Optic tracks per-inference timing, token usage, resource consumption,
and cost for model inference workloads. Records are aggregated into
performance reports with percentile statistics, compared across models,
exported to JSON or CSV, and evaluated against alert thresholds.`,
	Version: Version,
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "config.yaml", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig loads the configuration file with environment overrides and
// sets up the process-wide logger. A missing file falls back to defaults
// so read-only commands work without any configuration. The --verbose
// flag forces debug level.
func loadConfig() (*config.Config, error) {
	cfg, err := config.LoadConfigWithEnvOverrides(cfgFile)
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
		cfg = &config.Config{}
		config.ApplyDefaults(cfg)
	}

	if err := logging.Setup(&cfg.Telemetry.Logging, verbose); err != nil {
		return nil, err
	}
	return cfg, nil
}

// openStore constructs the store selected by the configuration.
func openStore(cfg *config.Config) (metrics.Store, error) {
	switch cfg.Storage.Backend {
	case "sqlite":
		return storage.NewSQLiteStore(&storage.SQLiteConfig{
			Path:         cfg.Storage.SQLite.Path,
			Driver:       cfg.Storage.SQLite.Driver,
			MaxOpenConns: cfg.Storage.SQLite.MaxOpenConns,
			MaxIdleConns: cfg.Storage.SQLite.MaxIdleConns,
			WALMode:      cfg.Storage.SQLite.WALMode,
			BusyTimeout:  cfg.Storage.SQLite.BusyTimeout,
		})
	default:
		return storage.NewMemoryStore(), nil
	}
}
