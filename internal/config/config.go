package config

import (
	"path/filepath"
	"time"

	"github.com/adrg/xdg"
)

// Default configuration values.
const (
	// DefaultTimeout is the per-request timeout of an external probe.
	DefaultTimeout = 5 * time.Second

	// DefaultConcurrency is the number of external probes in flight at once.
	DefaultConcurrency = 8

	// DefaultRate is the number of requests per second allowed to a single
	// external host. Zero disables the limit.
	DefaultRate = 5.0

	// AppName is the application name used for XDG directory paths.
	AppName = "linkcheck"
)

// Config holds all configuration options of a check run.
// It is populated from CLI flags and an optional config file and passed
// through the application rather than kept in global state.
type Config struct {
	// DocumentPath is the HTML file to check.
	DocumentPath string

	// Timeout is the per-request timeout of external probes.
	Timeout time.Duration

	// Concurrency is the maximum number of concurrent external probes.
	Concurrency int

	// Rate is the maximum number of requests per second per external host.
	// Zero means unlimited.
	Rate float64

	// UserAgent overrides the User-Agent of external probes when set.
	UserAgent string

	// ProxyAddress is an optional SOCKS5 proxy ("host:port") for probes.
	ProxyAddress string

	// NoExternal disables external checks.
	NoExternal bool

	// ExternalOnly disables internal path and anchor checks.
	ExternalOnly bool

	// Verbose includes ok entries in reports and enables debug logging.
	Verbose bool

	// ConfigFilePath is the explicit path of the config file, if any.
	// When empty, .linkcheck is searched in the current and home directories.
	ConfigFilePath string

	// File is the loaded config file. Nil when no file was found.
	File *File

	// JSONReport selects the JSON report. Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport selects the Markdown report. Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile is the output path of the report. Stdout when empty.
	ReportFile string

	// Save records the run in the history database.
	Save bool

	// DBDir is the directory of the history database.
	DBDir string
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Timeout:     DefaultTimeout,
		Concurrency: DefaultConcurrency,
		Rate:        DefaultRate,
		DBDir:       XDGDataDir(),
	}
}

// XDGDataDir returns the XDG data directory for linkcheck.
// On Linux: ~/.local/share/linkcheck
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// Validate checks if the configuration is valid.
// It returns the first problem found as a sentinel error.
func (c *Config) Validate() error {
	if c.DocumentPath == "" {
		return ErrNoDocument
	}
	if c.Timeout <= 0 {
		return ErrInvalidTimeout
	}
	if c.Concurrency <= 0 {
		return ErrInvalidConcurrency
	}
	if c.Rate < 0 {
		return ErrInvalidRate
	}
	if c.NoExternal && c.ExternalOnly {
		return ErrConflictingScopes
	}
	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}
	if c.File != nil {
		return c.File.Validate()
	}
	return nil
}

// ApplyFile copies the values of f into c. A value is only taken from the
// file when the corresponding flag was not set on the command line; changed
// reports whether a flag, by long name, was set explicitly.
func (c *Config) ApplyFile(f *File, changed func(flag string) bool) {
	c.File = f
	if f == nil {
		return
	}
	if f.Timeout > 0 && !changed("timeout") {
		c.Timeout = time.Duration(f.Timeout) * time.Second
	}
	if f.Concurrency > 0 && !changed("concurrency") {
		c.Concurrency = f.Concurrency
	}
	if f.Rate != nil && !changed("rate") {
		c.Rate = *f.Rate
	}
	if f.UserAgent != "" && !changed("user-agent") {
		c.UserAgent = f.UserAgent
	}
	if f.Proxy != "" && !changed("proxy") {
		c.ProxyAddress = f.Proxy
	}
}

// IgnorePatterns returns the ignore globs of the config file, if any.
func (c *Config) IgnorePatterns() []string {
	if c.File == nil {
		return nil
	}
	return c.File.Ignore
}
