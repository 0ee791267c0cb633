package engine

import (
	"context"
	"time"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// IsExpired applies the expiry policy to one tape at the given instant.
//
// A tape is expired when its creation date is known and its age exceeds
// the threshold. When the creation date is unknown the only case treated
// as expired is an ARCHIVED tape under a threshold at or below the
// configured ceiling: archiving happens to old tapes, so an archived
// tape with no timestamp is assumed to qualify under any reasonable
// retention window. Every other unknown-date combination is not expired;
// a tape whose age cannot be determined is never deleted by age.
func (p ExpiryPolicy) IsExpired(tape vtl.Tape, thresholdDays int, now time.Time) bool {
	if age, ok := tape.AgeDays(now); ok {
		return age > thresholdDays
	}
	if tape.Status == vtl.StatusArchived {
		return thresholdDays <= p.ArchivedAgeCeilingDays
	}
	return false
}

// DeleteExpired deletes every tape older than thresholdDays. With
// execute unset this produces the deletion plan (WouldDelete outcomes)
// without making a single mutating call.
func (e *Engine) DeleteExpired(ctx context.Context, thresholdDays int, execute bool) (*vtl.OperationResult, error) {
	result := e.newResult(vtl.ModeDeleteExpired, execute)
	defer func() { result.Finished = e.now() }()

	tapes, err := e.listTapes(ctx)
	if err != nil {
		return nil, err
	}
	result.Found = len(tapes)

	// Creation dates are not in the bulk listing; enrich active tapes so
	// their age is computable. Archived tapes stay date-less and fall
	// under the ceiling heuristic.
	e.enrich(ctx, tapes)

	now := e.now()
	var eligible []vtl.Tape
	for _, tape := range tapes {
		if e.expiry.IsExpired(tape, thresholdDays, now) {
			eligible = append(eligible, tape)
		}
	}
	result.Eligible = len(eligible)

	e.logger.Info("expiry analysis complete",
		"total", len(tapes),
		"expired", len(eligible),
		"threshold_days", thresholdDays,
		"execute", execute,
	)

	if err := e.processBatch(ctx, eligible, execute, result); err != nil {
		return result, err
	}
	return result, nil
}
