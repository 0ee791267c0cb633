package vtl

import "time"

// Action is the terminal state of a per-tape deletion attempt.
type Action string

const (
	// ActionDeleted means the mutating call succeeded.
	ActionDeleted Action = "deleted"
	// ActionWouldDelete means the tape was eligible but the run was a
	// dry run; no mutating call was made.
	ActionWouldDelete Action = "would_delete"
	// ActionSkipped means the tape was excluded by policy, e.g. a
	// non-deletable status. Reason carries the explanation.
	ActionSkipped Action = "skipped"
	// ActionFailed means the deletion was attempted (or its gateway
	// resolution was) and failed. Err carries the cause.
	ActionFailed Action = "failed"
)

// DeletionOutcome records what happened to a single tape within a batch.
// Outcomes are independent: one Failed or Skipped outcome never stops
// processing of the remaining tapes.
type DeletionOutcome struct {
	Barcode string     `json:"barcode"`
	ARN     string     `json:"arn"`
	Status  TapeStatus `json:"status"`
	Action  Action     `json:"action"`
	Reason  string     `json:"reason,omitempty"`
	Err     error      `json:"-"`
}

// Mode identifies which workflow produced an OperationResult.
type Mode string

const (
	ModeInventory      Mode = "inventory"
	ModeDeleteExpired  Mode = "delete_expired"
	ModeDeleteSpecific Mode = "delete_specific"
)

// OperationResult is the structured report every workflow returns.
// Results flow back to the caller; the engine never writes to the
// console directly.
type OperationResult struct {
	RunID    string    `json:"run_id"`
	Mode     Mode      `json:"mode"`
	Region   string    `json:"region"`
	Execute  bool      `json:"execute"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`

	// Found is the number of tapes discovered (inventory) or matched
	// (targeted delete). Eligible counts tapes that passed the expiry or
	// match policy and entered the deletion routine.
	Found    int `json:"found"`
	Eligible int `json:"eligible"`

	Deleted     int `json:"deleted"`
	WouldDelete int `json:"would_delete"`
	Skipped     int `json:"skipped"`
	Failed      int `json:"failed"`
	NotFound    int `json:"not_found"`

	// ByStatus counts discovered tapes per status (inventory).
	ByStatus map[TapeStatus]int `json:"by_status,omitempty"`

	// TotalSizeBytes and TotalUsedBytes aggregate capacity over the
	// discovered tapes (inventory).
	TotalSizeBytes int64 `json:"total_size_bytes,omitempty"`
	TotalUsedBytes int64 `json:"total_used_bytes,omitempty"`

	// Outcomes is the ordered per-tape record. Order follows processing
	// order, which follows listing or input order.
	Outcomes []DeletionOutcome `json:"outcomes,omitempty"`

	// NotFoundIdentifiers lists targeted-delete identifiers that matched
	// no tape in the inventory.
	NotFoundIdentifiers []string `json:"not_found_identifiers,omitempty"`
}

// Record appends an outcome and updates the matching counter.
func (r *OperationResult) Record(o DeletionOutcome) {
	r.Outcomes = append(r.Outcomes, o)
	switch o.Action {
	case ActionDeleted:
		r.Deleted++
	case ActionWouldDelete:
		r.WouldDelete++
	case ActionSkipped:
		r.Skipped++
	case ActionFailed:
		r.Failed++
	}
}
