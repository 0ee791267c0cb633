package config

import "time"

// ApplyDefaults fills in default values for any zero-valued fields.
// It is called automatically by Load.
func ApplyDefaults(cfg *Config) {
	if cfg.Retry.MaxAttempts == 0 {
		cfg.Retry.MaxAttempts = 5
	}
	if cfg.Retry.BaseDelay == 0 {
		cfg.Retry.BaseDelay = 2 * time.Second
	}
	if cfg.Retry.MaxDelay == 0 {
		cfg.Retry.MaxDelay = 30 * time.Second
	}

	if cfg.Expiry.DefaultDays == 0 {
		cfg.Expiry.DefaultDays = 60
	}
	if cfg.Expiry.ArchivedAgeCeilingDays == 0 {
		cfg.Expiry.ArchivedAgeCeilingDays = 3650
	}

	if cfg.Audit.Path == "" {
		cfg.Audit.Path = "tapekeeper_audit.db"
	}
	if cfg.Audit.BusyTimeout == 0 {
		cfg.Audit.BusyTimeout = 5 * time.Second
	}

	if cfg.Telemetry.LogLevel == "" {
		cfg.Telemetry.LogLevel = "info"
	}
	if cfg.Telemetry.LogFormat == "" {
		cfg.Telemetry.LogFormat = "text"
	}
	if cfg.Telemetry.MetricsNamespace == "" {
		cfg.Telemetry.MetricsNamespace = "tapekeeper"
	}
}

// Default returns a configuration with every default applied and no
// region set; callers must still supply a region.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	cfg.Audit.Enabled = true
	cfg.Schedule.WatchConfig = true
	return cfg
}
