// Package schedule runs the prune workflow on a recurring cron schedule
// and keeps the daemon's configuration fresh by watching the config file
// for changes between runs.
package schedule

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"sync"
	"time"

	"github.com/robfig/cron/v3"
)

// Job is one scheduled prune invocation. The runner never overlaps
// invocations: if a run is still in flight when the next tick fires,
// the tick is skipped.
type Job func(ctx context.Context) error

// Runner drives the recurring prune loop.
type Runner struct {
	spec    string
	job     Job
	cron    *cron.Cron
	logger  *slog.Logger
	metrics http.Handler
	addr    string

	mu      sync.Mutex
	running bool
	inRun   bool
}

// Options configures a Runner.
type Options struct {
	// Cron is the standard 5-field schedule expression.
	Cron string

	// MetricsAddr, when set, serves the Prometheus endpoint on /metrics.
	MetricsAddr string

	// Metrics is the handler for the /metrics endpoint.
	Metrics http.Handler

	Logger *slog.Logger
}

// NewRunner validates the schedule and builds a runner for the job.
func NewRunner(opts Options, job Job) (*Runner, error) {
	if _, err := cron.ParseStandard(opts.Cron); err != nil {
		return nil, fmt.Errorf("invalid cron schedule %q: %w", opts.Cron, err)
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &Runner{
		spec:    opts.Cron,
		job:     job,
		cron:    cron.New(),
		logger:  logger.With("component", "schedule"),
		metrics: opts.Metrics,
		addr:    opts.MetricsAddr,
	}, nil
}

// Run starts the cron loop and blocks until ctx is canceled. The metrics
// endpoint, if configured, serves for the lifetime of the loop.
func (r *Runner) Run(ctx context.Context) error {
	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return errors.New("scheduler already running")
	}
	r.running = true
	r.mu.Unlock()

	if _, err := r.cron.AddFunc(r.spec, func() { r.tick(ctx) }); err != nil {
		return fmt.Errorf("failed to schedule job: %w", err)
	}

	var srv *http.Server
	if r.addr != "" && r.metrics != nil {
		mux := http.NewServeMux()
		mux.Handle("/metrics", r.metrics)
		srv = &http.Server{Addr: r.addr, Handler: mux}
		go func() {
			r.logger.Info("metrics endpoint listening", "addr", r.addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				r.logger.Error("metrics endpoint failed", "error", err)
			}
		}()
	}

	r.cron.Start()
	r.logger.Info("scheduler started", "schedule", r.spec)

	<-ctx.Done()

	stopCtx := r.cron.Stop()
	select {
	case <-stopCtx.Done():
	case <-time.After(30 * time.Second):
		r.logger.Warn("scheduled run did not finish before shutdown deadline")
	}

	if srv != nil {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}

	r.logger.Info("scheduler stopped")
	return nil
}

func (r *Runner) tick(ctx context.Context) {
	r.mu.Lock()
	if r.inRun {
		r.mu.Unlock()
		r.logger.Warn("previous run still in flight, skipping tick")
		return
	}
	r.inRun = true
	r.mu.Unlock()

	defer func() {
		r.mu.Lock()
		r.inRun = false
		r.mu.Unlock()
	}()

	start := time.Now()
	if err := r.job(ctx); err != nil {
		r.logger.Error("scheduled run failed", "error", err, "duration", time.Since(start))
		return
	}
	r.logger.Info("scheduled run complete", "duration", time.Since(start))
}
