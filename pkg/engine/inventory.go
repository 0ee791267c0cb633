package engine

import (
	"context"
	"sort"
	"strings"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// Inventory is the result of the listing workflow: the structured
// operation report plus the tapes themselves, post-filter.
type Inventory struct {
	Result *vtl.OperationResult
	Tapes  []vtl.Tape

	// AllStatuses is every status observed before filtering, sorted, so
	// callers can show what a filter missed.
	AllStatuses []vtl.TapeStatus

	// TotalAll is the tape count before the status filter.
	TotalAll int
}

// ListAll lists every tape in the region, optionally filtered by status.
// The filter is a case-insensitive set match. Tapes in an active status
// get best-effort detail enrichment (creation date, used bytes) via
// their owning gateway; enrichment failure degrades to the basic listing
// fields and never aborts the inventory. The result is deterministic
// even with zero tapes found.
func (e *Engine) ListAll(ctx context.Context, statusFilter []string) (*Inventory, error) {
	result := e.newResult(vtl.ModeInventory, false)
	defer func() { result.Finished = e.now() }()

	tapes, err := e.listTapes(ctx)
	if err != nil {
		return nil, err
	}

	statusSet := make(map[vtl.TapeStatus]struct{})
	for _, tape := range tapes {
		statusSet[tape.Status] = struct{}{}
	}
	allStatuses := make([]vtl.TapeStatus, 0, len(statusSet))
	for s := range statusSet {
		allStatuses = append(allStatuses, s)
	}
	sort.Slice(allStatuses, func(i, j int) bool { return allStatuses[i] < allStatuses[j] })

	filtered := filterByStatus(tapes, statusFilter)

	e.enrich(ctx, filtered)

	for i := range filtered {
		result.ByStatus[filtered[i].Status]++
		result.TotalSizeBytes += filtered[i].SizeBytes
		result.TotalUsedBytes += filtered[i].UsedBytes
	}
	result.Found = len(filtered)

	e.logger.Info("inventory complete",
		"total", len(tapes),
		"matched", len(filtered),
		"filtered", len(statusFilter) > 0,
	)

	return &Inventory{
		Result:      result,
		Tapes:       filtered,
		AllStatuses: allStatuses,
		TotalAll:    len(tapes),
	}, nil
}

// filterByStatus keeps tapes whose status is in the filter set.
// An empty filter keeps everything. Matching is case-insensitive.
func filterByStatus(tapes []vtl.Tape, statusFilter []string) []vtl.Tape {
	if len(statusFilter) == 0 {
		return tapes
	}
	want := make(map[vtl.TapeStatus]struct{}, len(statusFilter))
	for _, s := range statusFilter {
		want[vtl.TapeStatus(strings.ToUpper(strings.TrimSpace(s)))] = struct{}{}
	}
	var out []vtl.Tape
	for _, tape := range tapes {
		if _, ok := want[tape.Status]; ok {
			out = append(out, tape)
		}
	}
	return out
}

// enrich attempts a detail lookup for tapes in statuses where the
// gateway-scoped describe call works (active tapes). Archived tapes have
// no gateway scope and keep their basic fields; any per-tape enrichment
// failure is logged and ignored.
func (e *Engine) enrich(ctx context.Context, tapes []vtl.Tape) {
	for i := range tapes {
		switch tapes[i].Status {
		case vtl.StatusAvailable, vtl.StatusRetrieved:
		default:
			continue
		}

		gw, err := e.dir.ResolveTape(ctx, tapes[i])
		if err != nil {
			e.logger.Debug("detail enrichment skipped",
				"barcode", tapes[i].Barcode, "error", err)
			continue
		}
		detailed, err := e.dir.Describe(ctx, gw.ARN, []string{tapes[i].ARN})
		if err != nil || len(detailed) == 0 {
			e.logger.Debug("detail lookup failed, keeping basic fields",
				"barcode", tapes[i].Barcode, "error", err)
			continue
		}
		d := detailed[0]
		tapes[i].CreatedAt = d.CreatedAt
		tapes[i].UsedBytes = d.UsedBytes
		tapes[i].GatewayARN = d.GatewayARN
		if d.PoolID != "" {
			tapes[i].PoolID = d.PoolID
		}
	}
}
