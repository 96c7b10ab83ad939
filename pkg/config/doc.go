// Package config loads, validates, and watches the optic configuration.
//
// # Loading
//
// Configuration is YAML. LoadConfig reads a file, applies defaults, and
// validates. LoadConfigWithEnvOverrides additionally applies OPTIC_*
// environment variables, which always win over file values:
//
//	OPTIC_STORAGE_BACKEND=sqlite
//	OPTIC_STORAGE_SQLITE_PATH=/var/lib/optic/optic.db
//	OPTIC_RETENTION_DAYS=30
//	OPTIC_TELEMETRY_LOGGING_LEVEL=debug
//
// # Hot reload
//
// When Watch is enabled, a FileWatcher re-loads the file on change and
// hands the new configuration to a callback. Model rate cards and alert
// thresholds are re-applied; storage settings require a restart.
package config
