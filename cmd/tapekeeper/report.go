package main

import (
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"github.com/cloudvtl/tapekeeper/pkg/engine"
	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

// Text rendering for command results lives here, not in the engine:
// workflows return structured results and the CLI decides presentation.

func renderInventory(w io.Writer, inv *engine.Inventory, statusFilter []string) {
	r := inv.Result

	fmt.Fprintf(w, "Virtual tapes in %s\n\n", r.Region)

	if len(inv.Tapes) == 0 {
		fmt.Fprintln(w, "No tapes found.")
		if len(statusFilter) > 0 && inv.TotalAll > 0 {
			fmt.Fprintf(w, "%d tape(s) exist outside the status filter; statuses present: %s\n",
				inv.TotalAll, joinStatuses(inv.AllStatuses))
		}
		return
	}

	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "BARCODE\tSTATUS\tCREATED\tSIZE\tUSED\tPOOL")
	for _, t := range inv.Tapes {
		created := "-"
		if t.CreatedAt != nil {
			created = t.CreatedAt.UTC().Format("2006-01-02")
		}
		pool := t.PoolID
		if pool == "" {
			pool = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\t%s\n",
			t.Barcode, t.Status, created,
			humanBytes(t.SizeBytes), humanBytes(t.UsedBytes), pool)
	}
	tw.Flush()

	fmt.Fprintf(w, "\nMatched %d of %d tape(s)", len(inv.Tapes), inv.TotalAll)
	if len(statusFilter) > 0 {
		fmt.Fprintf(w, " (statuses present: %s)", joinStatuses(inv.AllStatuses))
	}
	fmt.Fprintln(w)
	if r.TotalSizeBytes > 0 {
		fmt.Fprintf(w, "Total capacity %s, used %s\n",
			humanBytes(r.TotalSizeBytes), humanBytes(r.TotalUsedBytes))
	}
}

func renderResult(w io.Writer, r *vtl.OperationResult) {
	if r.Execute {
		fmt.Fprintf(w, "Deletion run %s in %s\n\n", r.RunID, r.Region)
	} else {
		fmt.Fprintf(w, "Deletion plan (dry run) for %s\n\n", r.Region)
	}

	for _, o := range r.Outcomes {
		switch o.Action {
		case vtl.ActionDeleted:
			fmt.Fprintf(w, "  deleted       %s (%s)\n", o.Barcode, o.Status)
		case vtl.ActionWouldDelete:
			fmt.Fprintf(w, "  would delete  %s (%s)\n", o.Barcode, o.Status)
		case vtl.ActionSkipped:
			fmt.Fprintf(w, "  skipped       %s (%s): %s\n", o.Barcode, o.Status, o.Reason)
		case vtl.ActionFailed:
			fmt.Fprintf(w, "  FAILED        %s (%s): %s", o.Barcode, o.Status, o.Reason)
			if o.Err != nil {
				fmt.Fprintf(w, ": %v", o.Err)
			}
			fmt.Fprintln(w)
		}
	}
	if len(r.Outcomes) > 0 {
		fmt.Fprintln(w)
	}

	for _, id := range r.NotFoundIdentifiers {
		fmt.Fprintf(w, "  not found     %s\n", id)
	}
	if len(r.NotFoundIdentifiers) > 0 {
		fmt.Fprintln(w)
	}

	fmt.Fprintf(w, "Found %d, eligible %d", r.Found, r.Eligible)
	if r.Execute {
		fmt.Fprintf(w, ", deleted %d", r.Deleted)
	} else {
		fmt.Fprintf(w, ", would delete %d", r.WouldDelete)
	}
	if r.Skipped > 0 {
		fmt.Fprintf(w, ", skipped %d", r.Skipped)
	}
	if r.Failed > 0 {
		fmt.Fprintf(w, ", failed %d", r.Failed)
	}
	if r.NotFound > 0 {
		fmt.Fprintf(w, ", not found %d", r.NotFound)
	}
	fmt.Fprintf(w, " (%s)\n", r.Finished.Sub(r.Started).Round(time.Millisecond))

	if !r.Execute && r.WouldDelete > 0 {
		fmt.Fprintln(w, "\nDry run: nothing was deleted. Re-run with --execute to delete.")
	}
}

func joinStatuses(statuses []vtl.TapeStatus) string {
	out := ""
	for i, s := range statuses {
		if i > 0 {
			out += ", "
		}
		out += string(s)
	}
	return out
}

// humanBytes renders a byte count in binary units, matching how the
// console presents tape sizes.
func humanBytes(n int64) string {
	const unit = 1024
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for v := n / unit; v >= unit; v /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
}
