// Package engine implements the tape lifecycle workflows: inventory,
// age-based deletion, and targeted deletion, all built over the retrying
// gateway client and the gateway directory.
//
// Every mutating branch is guarded by the execute flag: unless a caller
// explicitly asks for execution, the engine only simulates deletions and
// reports WouldDelete outcomes. There is no partial-execute mode.
package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/storagegateway"
	"github.com/google/uuid"

	"github.com/cloudvtl/tapekeeper/pkg/gateway"
	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

const pageLimit = 100

// ExpiryPolicy decides when a tape counts as expired.
type ExpiryPolicy struct {
	// ArchivedAgeCeilingDays bounds the heuristic for archived tapes
	// without a creation date: such a tape is assumed old enough to be
	// expired for any threshold at or below this ceiling. This is a
	// business-policy stand-in inherited from operational practice, not
	// a platform guarantee, which is why it is configuration and not a
	// constant. Default 3650 (ten years).
	ArchivedAgeCeilingDays int
}

// DefaultExpiryPolicy returns the ten-year ceiling.
func DefaultExpiryPolicy() ExpiryPolicy {
	return ExpiryPolicy{ArchivedAgeCeilingDays: 3650}
}

// DeletionObserver receives one event per completed tape outcome.
// Implemented by the metrics collector; nil disables observation.
type DeletionObserver interface {
	ObserveOutcome(mode vtl.Mode, action vtl.Action)
}

// Options configures an Engine.
type Options struct {
	Region string

	// Expiry is the expiry policy for DeleteExpired.
	Expiry ExpiryPolicy

	// BypassGovernanceRetention is threaded to both deletion calls. Off
	// by default; governance retention exists for a reason.
	BypassGovernanceRetention bool

	// Now supplies the clock; defaults to time.Now. Tests pin it.
	Now func() time.Time

	Logger   *slog.Logger
	Observer DeletionObserver
}

// Engine runs the three tape workflows. Processing is sequential and
// single-threaded by design: predictable ordering and simple failure
// attribution matter more than throughput at the batch sizes involved.
// The only state shared across tapes is the directory's gateway cache,
// which is read-only after first population.
type Engine struct {
	client   *gateway.Client
	dir      *gateway.Directory
	region   string
	expiry   ExpiryPolicy
	bypass   bool
	now      func() time.Time
	logger   *slog.Logger
	observer DeletionObserver
}

// New creates an engine over the retrying client and directory.
func New(client *gateway.Client, dir *gateway.Directory, opts Options) *Engine {
	if opts.Now == nil {
		opts.Now = time.Now
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Expiry.ArchivedAgeCeilingDays == 0 {
		opts.Expiry = DefaultExpiryPolicy()
	}
	return &Engine{
		client:   client,
		dir:      dir,
		region:   opts.Region,
		expiry:   opts.Expiry,
		bypass:   opts.BypassGovernanceRetention,
		now:      opts.Now,
		logger:   opts.Logger.With("component", "engine"),
		observer: opts.Observer,
	}
}

// newResult seeds an OperationResult with run identity.
func (e *Engine) newResult(mode vtl.Mode, execute bool) *vtl.OperationResult {
	return &vtl.OperationResult{
		RunID:    uuid.NewString(),
		Mode:     mode,
		Region:   e.region,
		Execute:  execute,
		Started:  e.now(),
		ByStatus: make(map[vtl.TapeStatus]int),
	}
}

// listTapes pulls the region-wide tape listing, paginated.
func (e *Engine) listTapes(ctx context.Context) ([]vtl.Tape, error) {
	var tapes []vtl.Tape
	var marker *string
	for {
		out, err := e.client.ListTapes(ctx, &storagegateway.ListTapesInput{
			Limit:  aws.Int32(pageLimit),
			Marker: marker,
		})
		if err != nil {
			return nil, err
		}
		for _, info := range out.TapeInfos {
			tapes = append(tapes, vtl.Tape{
				Barcode:    aws.ToString(info.TapeBarcode),
				ARN:        aws.ToString(info.TapeARN),
				Status:     vtl.ParseStatus(aws.ToString(info.TapeStatus)),
				SizeBytes:  aws.ToInt64(info.TapeSizeInBytes),
				GatewayARN: aws.ToString(info.GatewayARN),
				PoolID:     aws.ToString(info.PoolId),
			})
		}
		marker = out.Marker
		if marker == nil {
			break
		}
	}
	return tapes, nil
}

// deleteTape is the per-tape deletion routine. Which deletion primitive
// applies is determined by status alone:
//
//	AVAILABLE, RETRIEVED -> resolve owning gateway, DeleteTape
//	ARCHIVED             -> DeleteTapeArchive (no gateway needed)
//	anything else        -> Skipped, non-deletable status
//
// With execute unset no mutating call is made; eligible tapes report
// WouldDelete instead. Each outcome is independent of the rest of the
// batch.
func (e *Engine) deleteTape(ctx context.Context, tape vtl.Tape, execute bool) vtl.DeletionOutcome {
	outcome := vtl.DeletionOutcome{
		Barcode: tape.Barcode,
		ARN:     tape.ARN,
		Status:  tape.Status,
	}

	switch tape.Status {
	case vtl.StatusAvailable, vtl.StatusRetrieved:
		gw, err := e.dir.ResolveTape(ctx, tape)
		if err != nil {
			outcome.Action = vtl.ActionFailed
			outcome.Reason = "gateway not found for tape"
			outcome.Err = err
			return outcome
		}
		if !execute {
			outcome.Action = vtl.ActionWouldDelete
			return outcome
		}
		_, err = e.client.DeleteTape(ctx, &storagegateway.DeleteTapeInput{
			GatewayARN:                aws.String(gw.ARN),
			TapeARN:                   aws.String(tape.ARN),
			BypassGovernanceRetention: e.bypass,
		})
		if err != nil {
			outcome.Action = vtl.ActionFailed
			outcome.Reason = "delete failed"
			outcome.Err = err
			return outcome
		}
		e.logger.Info("deleted active tape", "barcode", tape.Barcode, "gateway", gw.ARN)
		outcome.Action = vtl.ActionDeleted
		return outcome

	case vtl.StatusArchived:
		if !execute {
			outcome.Action = vtl.ActionWouldDelete
			return outcome
		}
		_, err := e.client.DeleteTapeArchive(ctx, &storagegateway.DeleteTapeArchiveInput{
			TapeARN:                   aws.String(tape.ARN),
			BypassGovernanceRetention: e.bypass,
		})
		if err != nil {
			outcome.Action = vtl.ActionFailed
			outcome.Reason = "delete from VTS failed"
			outcome.Err = err
			return outcome
		}
		e.logger.Info("deleted archived tape from VTS", "barcode", tape.Barcode)
		outcome.Action = vtl.ActionDeleted
		return outcome

	default:
		outcome.Action = vtl.ActionSkipped
		outcome.Reason = "non-deletable status"
		return outcome
	}
}

// processBatch runs the deletion routine over the eligible tapes,
// recording outcomes in order. One tape's failure never stops the rest;
// only workflow-level errors (permission, cancellation) abort.
func (e *Engine) processBatch(ctx context.Context, tapes []vtl.Tape, execute bool, result *vtl.OperationResult) error {
	for _, tape := range tapes {
		if err := ctx.Err(); err != nil {
			// Interrupted: the result reflects tapes processed so far.
			return err
		}

		outcome := e.deleteTape(ctx, tape, execute)
		if outcome.Action == vtl.ActionFailed && gateway.IsPermissionError(outcome.Err) {
			// No value in burning the rest of the batch on the same
			// credential failure.
			return outcome.Err
		}
		result.Record(outcome)
		e.observeOutcome(result.Mode, outcome.Action)

		if !execute && outcome.Action == vtl.ActionWouldDelete {
			e.logger.Info("dry run: would delete tape",
				"barcode", tape.Barcode, "status", tape.Status)
		}
	}
	return nil
}

func (e *Engine) observeOutcome(mode vtl.Mode, action vtl.Action) {
	if e.observer != nil {
		e.observer.ObserveOutcome(mode, action)
	}
}
