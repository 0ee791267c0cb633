package engine

import (
	"context"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// DeleteByIdentifier deletes the tapes named by barcode or full ARN.
// Identifiers are resolved against a fresh inventory listing by exact
// match; unmatched identifiers are reported as not found and excluded
// without aborting the batch. Matched tapes run through the same
// per-tape deletion routine as the expiry workflow, behind the same
// execute gate.
func (e *Engine) DeleteByIdentifier(ctx context.Context, identifiers []string, execute bool) (*vtl.OperationResult, error) {
	result := e.newResult(vtl.ModeDeleteSpecific, execute)
	defer func() { result.Finished = e.now() }()

	tapes, err := e.listTapes(ctx)
	if err != nil {
		return nil, err
	}

	byARN := make(map[string]vtl.Tape, len(tapes))
	byBarcode := make(map[string]vtl.Tape, len(tapes))
	for _, tape := range tapes {
		if tape.ARN != "" {
			byARN[tape.ARN] = tape
		}
		if tape.Barcode != "" {
			byBarcode[tape.Barcode] = tape
		}
	}

	var matched []vtl.Tape
	for _, id := range identifiers {
		var tape vtl.Tape
		var ok bool
		if vtl.IsARN(id) {
			tape, ok = byARN[id]
		} else {
			tape, ok = byBarcode[id]
		}
		if !ok {
			e.logger.Warn("tape not found", "identifier", id)
			result.NotFound++
			result.NotFoundIdentifiers = append(result.NotFoundIdentifiers, id)
			continue
		}
		result.Found++
		matched = append(matched, tape)
	}
	result.Eligible = len(matched)

	e.logger.Info("targeted delete resolved",
		"requested", len(identifiers),
		"found", result.Found,
		"not_found", result.NotFound,
		"execute", execute,
	)

	if err := e.processBatch(ctx, matched, execute, result); err != nil {
		return result, err
	}
	return result, nil
}
