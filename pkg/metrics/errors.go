package metrics

import "fmt"

// AlreadyStartedError indicates Start was called twice on the same tracker.
type AlreadyStartedError struct {
	ModelID string
}

// Error implements the error interface.
func (e *AlreadyStartedError) Error() string {
	return fmt.Sprintf("inference tracker for model %q already started", e.ModelID)
}

// NotStartedError indicates Stop or RecordFirstToken was called before Start.
type NotStartedError struct {
	ModelID string
}

// Error implements the error interface.
func (e *NotStartedError) Error() string {
	return fmt.Sprintf("inference tracker for model %q not started", e.ModelID)
}

// StorageError represents an error from a metric storage backend.
type StorageError struct {
	Backend   string // Storage backend type ("sqlite", "memory", etc.)
	Operation string // Operation that failed ("append", "query", "cleanup", etc.)
	Cause     error  // Underlying error
}

// Error implements the error interface.
func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error [backend=%s, operation=%s]: %v", e.Backend, e.Operation, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *StorageError) Unwrap() error {
	return e.Cause
}

// NewStorageError creates a new StorageError.
func NewStorageError(backend, operation string, cause error) *StorageError {
	return &StorageError{
		Backend:   backend,
		Operation: operation,
		Cause:     cause,
	}
}

// ConfigError represents an invalid alert or engine configuration value.
// It is raised at configuration time, never deferred to evaluation time.
type ConfigError struct {
	Field  string // Configuration field that failed validation
	Reason string // Why the value was rejected
}

// Error implements the error interface.
func (e *ConfigError) Error() string {
	return fmt.Sprintf("config error [field=%s]: %s", e.Field, e.Reason)
}

// NewConfigError creates a new ConfigError.
func NewConfigError(field, reason string) *ConfigError {
	return &ConfigError{Field: field, Reason: reason}
}

// ExportError represents an error during metric export.
type ExportError struct {
	Format      string // Export format ("json", "csv")
	RecordCount int    // Number of records being exported
	Cause       error  // Underlying error
}

// Error implements the error interface.
func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [format=%s, record_count=%d]: %v", e.Format, e.RecordCount, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *ExportError) Unwrap() error {
	return e.Cause
}

// NewExportError creates a new ExportError.
func NewExportError(format string, recordCount int, cause error) *ExportError {
	return &ExportError{
		Format:      format,
		RecordCount: recordCount,
		Cause:       cause,
	}
}

// RetentionError represents an error during retention enforcement.
type RetentionError struct {
	RetentionDays int   // Configured retention period
	Cause         error // Underlying error
}

// Error implements the error interface.
func (e *RetentionError) Error() string {
	return fmt.Sprintf("retention error [retention_days=%d]: %v", e.RetentionDays, e.Cause)
}

// Unwrap returns the underlying cause error.
func (e *RetentionError) Unwrap() error {
	return e.Cause
}

// NewRetentionError creates a new RetentionError.
func NewRetentionError(retentionDays int, cause error) *RetentionError {
	return &RetentionError{
		RetentionDays: retentionDays,
		Cause:         cause,
	}
}

// UnknownModelError indicates an operation referenced a model that has no
// registered rate card.
type UnknownModelError struct {
	ModelID string
}

// Error implements the error interface.
func (e *UnknownModelError) Error() string {
	return fmt.Sprintf("no rate card registered for model %q", e.ModelID)
}

// HandlerExistsError indicates a notification handler is already
// registered for a channel.
type HandlerExistsError struct {
	Channel string
}

// Error implements the error interface.
func (e *HandlerExistsError) Error() string {
	return fmt.Sprintf("alert handler already registered for channel %q", e.Channel)
}
