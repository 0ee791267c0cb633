package config

import (
	"fmt"
	"strings"

	"github.com/robfig/cron/v3"
)

// FieldError is a validation error for one configuration field.
type FieldError struct {
	// Field is the dotted path to the field (e.g. "retry.max_attempts").
	Field string

	// Message is a human-readable error message.
	Message string
}

func (e FieldError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationError aggregates every validation failure found in a
// configuration so the operator fixes them in one pass.
type ValidationError struct {
	Errors []FieldError
}

func (e ValidationError) Error() string {
	if len(e.Errors) == 0 {
		return "configuration validation failed"
	}
	if len(e.Errors) == 1 {
		return fmt.Sprintf("configuration validation failed: %s", e.Errors[0].Error())
	}
	var sb strings.Builder
	fmt.Fprintf(&sb, "configuration validation failed with %d errors:\n", len(e.Errors))
	for _, err := range e.Errors {
		fmt.Fprintf(&sb, "  - %s\n", err.Error())
	}
	return sb.String()
}

// Validate checks the configuration and returns a ValidationError
// collecting every failed rule, or nil when valid. Validation happens
// before any remote call is made.
func Validate(cfg *Config) error {
	var errs []FieldError

	if cfg.AWS.Region == "" {
		errs = append(errs, FieldError{
			Field:   "aws.region",
			Message: "region is required",
		})
	}

	if cfg.Retry.MaxAttempts < 1 {
		errs = append(errs, FieldError{
			Field:   "retry.max_attempts",
			Message: "must be at least 1",
		})
	}
	if cfg.Retry.BaseDelay < 0 {
		errs = append(errs, FieldError{
			Field:   "retry.base_delay",
			Message: "must not be negative",
		})
	}
	if cfg.Retry.MaxDelay > 0 && cfg.Retry.MaxDelay < cfg.Retry.BaseDelay {
		errs = append(errs, FieldError{
			Field:   "retry.max_delay",
			Message: "must not be smaller than base_delay",
		})
	}

	if cfg.Expiry.DefaultDays <= 0 {
		errs = append(errs, FieldError{
			Field:   "expiry.default_days",
			Message: "must be positive",
		})
	}
	if cfg.Expiry.ArchivedAgeCeilingDays < 0 {
		errs = append(errs, FieldError{
			Field:   "expiry.archived_age_ceiling_days",
			Message: "must not be negative",
		})
	}

	if cfg.Schedule.Cron != "" {
		if _, err := cron.ParseStandard(cfg.Schedule.Cron); err != nil {
			errs = append(errs, FieldError{
				Field:   "schedule.cron",
				Message: fmt.Sprintf("invalid cron expression: %v", err),
			})
		}
	}

	switch cfg.Telemetry.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.log_level",
			Message: fmt.Sprintf("unknown level %q (expected debug, info, warn, error)", cfg.Telemetry.LogLevel),
		})
	}
	switch cfg.Telemetry.LogFormat {
	case "json", "text":
	default:
		errs = append(errs, FieldError{
			Field:   "telemetry.log_format",
			Message: fmt.Sprintf("unknown format %q (expected json or text)", cfg.Telemetry.LogFormat),
		})
	}

	if len(errs) > 0 {
		return ValidationError{Errors: errs}
	}
	return nil
}

// ValidateStatusFilter checks the raw status filter values from the
// command line against the known status set, returning the normalized
// upper-cased values.
func ValidateStatusFilter(raw []string) ([]string, error) {
	var out []string
	var invalid []string
	for _, s := range raw {
		s = strings.ToUpper(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if !knownStatus(s) {
			invalid = append(invalid, s)
			continue
		}
		out = append(out, s)
	}
	if len(invalid) > 0 {
		return nil, FieldError{
			Field: "status-filter",
			Message: fmt.Sprintf("invalid status values: %s (valid: %s)",
				strings.Join(invalid, ", "), strings.Join(validStatusNames, ", ")),
		}
	}
	return out, nil
}

var validStatusNames = []string{
	"AVAILABLE", "RETRIEVED", "ARCHIVED", "CREATING", "IN_TRANSIT_TO_VTS",
	"DELETING", "DELETED", "IRRECOVERABLE", "RECOVERING",
}

func knownStatus(s string) bool {
	for _, v := range validStatusNames {
		if s == v {
			return true
		}
	}
	return false
}
