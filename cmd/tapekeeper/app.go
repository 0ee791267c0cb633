package main

import (
	"context"
	"log/slog"

	"github.com/cloudvtl/tapekeeper/pkg/audit"
	"github.com/cloudvtl/tapekeeper/pkg/config"
	"github.com/cloudvtl/tapekeeper/pkg/engine"
	"github.com/cloudvtl/tapekeeper/pkg/gateway"
	"github.com/cloudvtl/tapekeeper/pkg/telemetry/logging"
	"github.com/cloudvtl/tapekeeper/pkg/telemetry/metrics"
	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// app holds the wired dependency graph shared by the AWS-facing
// subcommands: config, logger, metrics, the retrying client, the gateway
// directory, the engine, and the optional audit store.
type app struct {
	cfg       *config.Config
	logger    *slog.Logger
	collector *metrics.Collector
	engine    *engine.Engine
	audit     *audit.Store
}

// buildApp loads configuration and assembles the engine with its real
// AWS client. Commands that never touch AWS (version, history) do their
// own lighter wiring.
func buildApp(ctx context.Context) (*app, error) {
	cfg, err := loadConfig()
	if err != nil {
		return nil, err
	}

	logger, err := logging.Setup(logging.Config{
		Level:  cfg.Telemetry.LogLevel,
		Format: cfg.Telemetry.LogFormat,
	})
	if err != nil {
		return nil, err
	}

	collector := metrics.NewCollector(cfg.Telemetry.MetricsNamespace, nil)

	sg, err := gateway.NewAWSClient(ctx, gateway.AWSConfig{
		Region:   cfg.AWS.Region,
		Profile:  cfg.AWS.Profile,
		Endpoint: cfg.AWS.Endpoint,
	})
	if err != nil {
		return nil, err
	}

	policy := gateway.DefaultRetryPolicy()
	policy.MaxAttempts = cfg.Retry.MaxAttempts
	policy.BaseDelay = cfg.Retry.BaseDelay
	policy.MaxDelay = cfg.Retry.MaxDelay

	client := gateway.NewClient(sg, policy, logger, collector)
	dir := gateway.NewDirectory(client, cfg.AWS.Region, logger, collector)

	eng := engine.New(client, dir, engine.Options{
		Region:                    cfg.AWS.Region,
		Expiry:                    engine.ExpiryPolicy{ArchivedAgeCeilingDays: cfg.Expiry.ArchivedAgeCeilingDays},
		BypassGovernanceRetention: cfg.Expiry.BypassGovernanceRetention,
		Logger:                    logger,
		Observer:                  collector,
	})

	a := &app{
		cfg:       cfg,
		logger:    logger,
		collector: collector,
		engine:    eng,
	}

	if cfg.Audit.Enabled {
		store, err := audit.Open(audit.Config{
			Path:        cfg.Audit.Path,
			BusyTimeout: cfg.Audit.BusyTimeout,
		})
		if err != nil {
			// The audit trail is a convenience, not a prerequisite for
			// managing tapes.
			logger.Warn("audit store unavailable, continuing without run history", "error", err)
		} else {
			a.audit = store
		}
	}

	return a, nil
}

// recordRun persists the result to the audit store, best effort.
func (a *app) recordRun(ctx context.Context, r *vtl.OperationResult) {
	if a.audit == nil {
		return
	}
	if err := a.audit.RecordRun(ctx, r); err != nil {
		a.logger.Warn("failed to record run in audit store", "run_id", r.RunID, "error", err)
	}
}

// Close releases held resources.
func (a *app) Close() {
	if a.audit != nil {
		if err := a.audit.Close(); err != nil {
			a.logger.Warn("failed to close audit store", "error", err)
		}
	}
}

// resolveDays picks the expiry threshold: the flag when given, the
// configured default otherwise.
func resolveDays(cfg *config.Config, flagDays int) int {
	if flagDays > 0 {
		return flagDays
	}
	return cfg.Expiry.DefaultDays
}
