// Package config defines the tapekeeper configuration: an immutable
// value constructed once per run from the YAML file, defaults, and
// environment overrides, then passed to the engine.
package config

import "time"

// Config is the root configuration structure.
type Config struct {
	// AWS selects the account, region, and optional endpoint override.
	AWS AWSConfig `yaml:"aws"`

	// Retry controls the API backoff policy.
	Retry RetryConfig `yaml:"retry"`

	// Expiry controls the age-based deletion policy.
	Expiry ExpiryConfig `yaml:"expiry"`

	// Audit controls the local run-history database.
	Audit AuditConfig `yaml:"audit"`

	// Schedule controls the recurring prune daemon.
	Schedule ScheduleConfig `yaml:"schedule"`

	// Telemetry controls logging and metrics.
	Telemetry TelemetryConfig `yaml:"telemetry"`
}

// AWSConfig contains AWS client settings.
type AWSConfig struct {
	// Region is the AWS region holding the Storage Gateways. Required.
	Region string `yaml:"region"`

	// Profile is an optional named credentials profile. Empty uses the
	// default credential chain.
	Profile string `yaml:"profile"`

	// Endpoint overrides the service endpoint, for LocalStack and tests.
	Endpoint string `yaml:"endpoint"`
}

// RetryConfig contains backoff settings for throttled API calls.
type RetryConfig struct {
	// MaxAttempts is the total number of tries per call, including the
	// first. Default: 5
	MaxAttempts int `yaml:"max_attempts"`

	// BaseDelay seeds the exponential backoff. Default: 2s
	BaseDelay time.Duration `yaml:"base_delay"`

	// MaxDelay caps a single backoff interval. Default: 30s
	MaxDelay time.Duration `yaml:"max_delay"`
}

// ExpiryConfig contains the age-based deletion policy.
type ExpiryConfig struct {
	// DefaultDays is the expiry threshold used when the command line
	// does not supply one. Default: 60
	DefaultDays int `yaml:"default_days"`

	// ArchivedAgeCeilingDays bounds the archived-tape heuristic: an
	// archived tape with no creation date counts as expired only for
	// thresholds at or below this value. Default: 3650
	ArchivedAgeCeilingDays int `yaml:"archived_age_ceiling_days"`

	// BypassGovernanceRetention passes the bypass flag on deletion
	// calls. Default: false
	BypassGovernanceRetention bool `yaml:"bypass_governance_retention"`
}

// AuditConfig contains run-history database settings.
type AuditConfig struct {
	// Enabled turns the audit store on. Default: true
	Enabled bool `yaml:"enabled"`

	// Path is the sqlite database file. Default: tapekeeper_audit.db
	Path string `yaml:"path"`

	// BusyTimeout is how long to wait when the database is locked.
	// Default: 5s
	BusyTimeout time.Duration `yaml:"busy_timeout"`
}

// ScheduleConfig contains recurring-prune daemon settings.
type ScheduleConfig struct {
	// Cron is the standard 5-field cron expression for recurring prune
	// runs, e.g. "0 3 * * *" for daily at 3 AM.
	Cron string `yaml:"cron"`

	// MetricsAddr is the listen address for the Prometheus /metrics
	// endpoint in schedule mode. Empty disables the endpoint.
	MetricsAddr string `yaml:"metrics_addr"`

	// WatchConfig reloads thresholds when the config file changes
	// between runs. Default: true
	WatchConfig bool `yaml:"watch_config"`
}

// TelemetryConfig contains logging and metrics settings.
type TelemetryConfig struct {
	// LogLevel is the minimum level: debug, info, warn, error.
	// Default: info
	LogLevel string `yaml:"log_level"`

	// LogFormat is the output format: json or text. Default: text
	LogFormat string `yaml:"log_format"`

	// MetricsNamespace prefixes every metric name. Default: tapekeeper
	MetricsNamespace string `yaml:"metrics_namespace"`
}
