package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// Load reads configuration from a YAML file, applies defaults and
// environment overrides, and validates the result. The file is
// optional: a missing path yields the defaults, since every required
// value can come from flags or TAPEKEEPER_* environment variables.
//
// The loading sequence is:
//  1. Start from defaults
//  2. Unmarshal the YAML file over them (if present)
//  3. Apply environment variable overrides
//
// Validation is the caller's job, after command-line flags have been
// merged in, so a region given with --region does not fail file loading.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
			// No file: defaults + env only.
		case err != nil:
			return nil, fmt.Errorf("failed to read configuration file %q: %w", path, err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse configuration file %q: %w", path, err)
			}
		}
	}

	ApplyDefaults(cfg)
	applyEnvOverrides(cfg)
	return cfg, nil
}

// applyEnvOverrides applies TAPEKEEPER_SECTION_FIELD environment
// variables over the loaded configuration. Environment always wins over
// the file.
func applyEnvOverrides(cfg *Config) {
	if v := os.Getenv("TAPEKEEPER_AWS_REGION"); v != "" {
		cfg.AWS.Region = v
	}
	if v := os.Getenv("TAPEKEEPER_AWS_PROFILE"); v != "" {
		cfg.AWS.Profile = v
	}
	if v := os.Getenv("TAPEKEEPER_AWS_ENDPOINT"); v != "" {
		cfg.AWS.Endpoint = v
	}
	if v := os.Getenv("TAPEKEEPER_RETRY_MAX_ATTEMPTS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Retry.MaxAttempts = n
		}
	}
	if v := os.Getenv("TAPEKEEPER_RETRY_BASE_DELAY"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Retry.BaseDelay = d
		}
	}
	if v := os.Getenv("TAPEKEEPER_EXPIRY_DEFAULT_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Expiry.DefaultDays = n
		}
	}
	if v := os.Getenv("TAPEKEEPER_EXPIRY_ARCHIVED_AGE_CEILING_DAYS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			cfg.Expiry.ArchivedAgeCeilingDays = n
		}
	}
	if v := os.Getenv("TAPEKEEPER_AUDIT_PATH"); v != "" {
		cfg.Audit.Path = v
	}
	if v := os.Getenv("TAPEKEEPER_LOG_LEVEL"); v != "" {
		cfg.Telemetry.LogLevel = v
	}
	if v := os.Getenv("TAPEKEEPER_LOG_FORMAT"); v != "" {
		cfg.Telemetry.LogFormat = v
	}
}
