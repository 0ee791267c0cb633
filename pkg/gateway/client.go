package gateway

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/aws/aws-sdk-go-v2/service/storagegateway"
)

// RetryPolicy controls the backoff behavior of the retrying client.
// Every field is injectable so retry behavior is unit-testable with a
// fake clock instead of real sleeps.
type RetryPolicy struct {
	// MaxAttempts is the total number of tries, including the first.
	MaxAttempts int

	// BaseDelay seeds the exponential backoff: the delay before attempt
	// n+1 is BaseDelay * 2^(n-1), jittered, capped at MaxDelay.
	BaseDelay time.Duration

	// MaxDelay caps a single backoff interval.
	MaxDelay time.Duration

	// Jitter perturbs a computed delay. Defaults to full jitter over
	// [d/2, d).
	Jitter func(d time.Duration) time.Duration

	// Sleep waits for the given duration or until the context is done.
	// Defaults to a real timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// DefaultRetryPolicy returns the production policy: up to 5 attempts,
// 2s base delay, capped at 30s.
func DefaultRetryPolicy() RetryPolicy {
	return RetryPolicy{
		MaxAttempts: 5,
		BaseDelay:   2 * time.Second,
		MaxDelay:    30 * time.Second,
	}
}

func (p RetryPolicy) jitter(d time.Duration) time.Duration {
	if p.Jitter != nil {
		return p.Jitter(d)
	}
	if d <= 0 {
		return 0
	}
	half := d / 2
	return half + time.Duration(rand.Int63n(int64(half)+1))
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

// delay computes the backoff before retry attempt (1-based).
func (p RetryPolicy) delay(attempt int) time.Duration {
	d := p.BaseDelay << uint(attempt-1)
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return p.jitter(d)
}

// CallObserver receives the per-call trace: operation name, total
// attempts used, and the final error (nil on success). The metrics
// collector implements it; tests use it to assert retry counts.
type CallObserver interface {
	ObserveCall(operation string, attempts int, err error)
}

// Client executes Storage Gateway calls with bounded retry and
// exponential backoff on throttling-class errors. Permission and
// validation errors propagate immediately; the retry budget is never
// spent on unrecoverable failures. Backoff only delays the current
// call, never other work.
type Client struct {
	api      API
	policy   RetryPolicy
	logger   *slog.Logger
	observer CallObserver
}

// NewClient wraps api with the given retry policy. observer may be nil.
func NewClient(api API, policy RetryPolicy, logger *slog.Logger, observer CallObserver) *Client {
	if policy.MaxAttempts <= 0 {
		policy = DefaultRetryPolicy()
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Client{
		api:      api,
		policy:   policy,
		logger:   logger.With("component", "gateway.client"),
		observer: observer,
	}
}

// call runs fn with the retry policy applied. fn must be idempotent from
// the service's point of view, which holds for every operation the
// engine uses (list, describe, delete).
func call[T any](ctx context.Context, c *Client, operation string, fn func(context.Context) (T, error)) (T, error) {
	var zero T
	var lastErr error

	for attempt := 1; attempt <= c.policy.MaxAttempts; attempt++ {
		if attempt > 1 {
			d := c.policy.delay(attempt - 1)
			c.logger.Warn("throttled, backing off",
				"operation", operation,
				"attempt", attempt,
				"max_attempts", c.policy.MaxAttempts,
				"delay", d,
			)
			if err := c.policy.sleep(ctx, d); err != nil {
				c.observe(operation, attempt-1, err)
				return zero, err
			}
		}

		out, err := fn(ctx)
		if err == nil {
			c.observe(operation, attempt, nil)
			return out, nil
		}
		lastErr = err

		if !IsThrottling(err) {
			// Terminal error: classify and surface unchanged semantics.
			c.observe(operation, attempt, err)
			return zero, Classify(operation, err)
		}
	}

	err := &ThrottledError{Operation: operation, Attempts: c.policy.MaxAttempts, Err: lastErr}
	c.observe(operation, c.policy.MaxAttempts, err)
	return zero, err
}

func (c *Client) observe(operation string, attempts int, err error) {
	if c.observer != nil {
		c.observer.ObserveCall(operation, attempts, err)
	}
}

// ListTapes lists tapes region-wide with retry.
func (c *Client) ListTapes(ctx context.Context, params *storagegateway.ListTapesInput, optFns ...func(*storagegateway.Options)) (*storagegateway.ListTapesOutput, error) {
	return call(ctx, c, "ListTapes", func(ctx context.Context) (*storagegateway.ListTapesOutput, error) {
		return c.api.ListTapes(ctx, params, optFns...)
	})
}

// ListGateways lists gateways region-wide with retry.
func (c *Client) ListGateways(ctx context.Context, params *storagegateway.ListGatewaysInput, optFns ...func(*storagegateway.Options)) (*storagegateway.ListGatewaysOutput, error) {
	return call(ctx, c, "ListGateways", func(ctx context.Context) (*storagegateway.ListGatewaysOutput, error) {
		return c.api.ListGateways(ctx, params, optFns...)
	})
}

// DescribeTapes fetches tape detail scoped to one gateway with retry.
func (c *Client) DescribeTapes(ctx context.Context, params *storagegateway.DescribeTapesInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DescribeTapesOutput, error) {
	return call(ctx, c, "DescribeTapes", func(ctx context.Context) (*storagegateway.DescribeTapesOutput, error) {
		return c.api.DescribeTapes(ctx, params, optFns...)
	})
}

// DeleteTape deletes an active tape through its owning gateway with retry.
func (c *Client) DeleteTape(ctx context.Context, params *storagegateway.DeleteTapeInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DeleteTapeOutput, error) {
	return call(ctx, c, "DeleteTape", func(ctx context.Context) (*storagegateway.DeleteTapeOutput, error) {
		return c.api.DeleteTape(ctx, params, optFns...)
	})
}

// DeleteTapeArchive deletes an archived tape from VTS with retry.
func (c *Client) DeleteTapeArchive(ctx context.Context, params *storagegateway.DeleteTapeArchiveInput, optFns ...func(*storagegateway.Options)) (*storagegateway.DeleteTapeArchiveOutput, error) {
	return call(ctx, c, "DeleteTapeArchive", func(ctx context.Context) (*storagegateway.DeleteTapeArchiveOutput, error) {
		return c.api.DeleteTapeArchive(ctx, params, optFns...)
	})
}

// compile-time check: the retrying client is itself an API, so the
// directory and engine can be built over either layer.
var _ API = (*Client)(nil)
