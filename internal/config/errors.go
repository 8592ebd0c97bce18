package config

import "errors"

// Configuration validation errors returned by Config.Validate.
var (
	// ErrNoDocument is returned when no HTML file was given.
	ErrNoDocument = errors.New("no document specified: provide the path of an HTML file")

	// ErrInvalidTimeout is returned when the timeout is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive")

	// ErrInvalidConcurrency is returned when the concurrency is not positive.
	ErrInvalidConcurrency = errors.New("invalid concurrency: must be positive")

	// ErrInvalidRate is returned when the per-host rate is negative.
	// Use 0 to disable rate limiting.
	ErrInvalidRate = errors.New("invalid rate: must be non-negative")

	// ErrConflictingScopes is returned when both --no-external and
	// --external-only are specified.
	ErrConflictingScopes = errors.New("conflicting scopes: --no-external and --external-only cannot be used together")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrInvalidIgnorePattern is returned when an ignore entry of the config
	// file is not a valid glob.
	ErrInvalidIgnorePattern = errors.New("invalid ignore pattern")
)
