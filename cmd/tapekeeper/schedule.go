package main

import (
	"context"
	"sync/atomic"

	"github.com/spf13/cobra"

	"github.com/cloudvtl/tapekeeper/pkg/cli"
	"github.com/cloudvtl/tapekeeper/pkg/schedule"
)

var scheduleFlags struct {
	cron        string
	days        int
	execute     bool
	metricsAddr string
}

var scheduleCmd = &cobra.Command{
	Use:   "schedule",
	Short: "Run the prune workflow on a recurring schedule",
	Long: `Run as a daemon, executing the prune workflow on a cron schedule
until interrupted. Each run is recorded in the audit store. With
--metrics-addr set, Prometheus metrics are served on /metrics.

The config file is watched between runs; threshold changes take effect
on the next tick without a restart.

Examples:
  # Dry-run prune daily at 3 AM, metrics on :9090
  tapekeeper schedule --region us-east-1 --cron "0 3 * * *" --days 90 --metrics-addr :9090

  # Actually delete on each run
  tapekeeper schedule --region us-east-1 --cron "0 3 * * *" --days 90 --execute`,
	RunE: runSchedule,
}

func init() {
	rootCmd.AddCommand(scheduleCmd)

	scheduleCmd.Flags().StringVar(&scheduleFlags.cron, "cron", "", "cron schedule (default from config)")
	scheduleCmd.Flags().IntVar(&scheduleFlags.days, "days", 0, "age threshold in days (default from config)")
	scheduleCmd.Flags().BoolVar(&scheduleFlags.execute, "execute", false, "actually delete on each run; omit for dry runs")
	scheduleCmd.Flags().StringVar(&scheduleFlags.metricsAddr, "metrics-addr", "", "listen address for /metrics (default from config)")
}

func runSchedule(cmd *cobra.Command, args []string) error {
	ctx := cli.SetupSignalHandler()
	app, err := buildApp(ctx)
	if err != nil {
		return err
	}
	defer app.Close()

	cronSpec := scheduleFlags.cron
	if cronSpec == "" {
		cronSpec = app.cfg.Schedule.Cron
	}
	if cronSpec == "" {
		return cli.NewUsageError("no schedule: set --cron or schedule.cron in the config file")
	}

	metricsAddr := scheduleFlags.metricsAddr
	if metricsAddr == "" {
		metricsAddr = app.cfg.Schedule.MetricsAddr
	}

	// The threshold is re-read on every tick so a config reload between
	// runs takes effect. The flag, when given, pins it for the lifetime
	// of the daemon.
	var days atomic.Int64
	days.Store(int64(resolveDays(app.cfg, scheduleFlags.days)))

	job := func(ctx context.Context) error {
		result, err := app.engine.DeleteExpired(ctx, int(days.Load()), scheduleFlags.execute)
		if err != nil {
			return err
		}
		app.recordRun(ctx, result)
		app.logger.Info("scheduled prune finished",
			"run_id", result.RunID,
			"execute", result.Execute,
			"eligible", result.Eligible,
			"deleted", result.Deleted,
			"would_delete", result.WouldDelete,
			"failed", result.Failed,
		)
		return nil
	}

	runner, err := schedule.NewRunner(schedule.Options{
		Cron:        cronSpec,
		MetricsAddr: metricsAddr,
		Metrics:     app.collector.Handler(),
		Logger:      app.logger,
	}, job)
	if err != nil {
		return err
	}

	if app.cfg.Schedule.WatchConfig && scheduleFlags.days == 0 {
		watcher := schedule.NewConfigWatcher(cfgFile, app.logger)
		go func() {
			_ = watcher.Watch(ctx, func() error {
				// Same merge as startup, so a region given on the command
				// line keeps validating after the file changes.
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				days.Store(int64(cfg.Expiry.DefaultDays))
				app.logger.Info("expiry threshold updated", "days", cfg.Expiry.DefaultDays)
				return nil
			})
		}()
	}

	return runner.Run(ctx)
}
