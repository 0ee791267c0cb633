package vtl

import (
	"strings"
	"time"
)

// TapeStatus is the lifecycle status of a virtual tape as reported by
// Storage Gateway. The remote API returns free-form strings; ParseStatus
// maps them onto this closed set so policy code never matches raw strings.
type TapeStatus string

const (
	// StatusAvailable means the tape is attached to a gateway and writable.
	StatusAvailable TapeStatus = "AVAILABLE"
	// StatusArchived means the tape has been moved to the Virtual Tape
	// Shelf (VTS). Archived tapes carry reduced metadata and are deleted
	// with a different API call than active tapes.
	StatusArchived TapeStatus = "ARCHIVED"
	// StatusInTransitToVTS means archival is in progress. The tape is not
	// deletable until the transfer completes.
	StatusInTransitToVTS TapeStatus = "IN_TRANSIT_TO_VTS"
	// StatusRetrieved means the tape has been recalled from VTS back to a
	// gateway.
	StatusRetrieved TapeStatus = "RETRIEVED"
	// StatusCreating means the tape is still being provisioned.
	StatusCreating TapeStatus = "CREATING"
	// StatusDeleting means a delete is already in flight.
	StatusDeleting TapeStatus = "DELETING"
	// StatusDeleted means the tape has already been removed but still
	// shows up in listings for a short window.
	StatusDeleted TapeStatus = "DELETED"
	// StatusIrrecoverable means the tape data cannot be recovered.
	StatusIrrecoverable TapeStatus = "IRRECOVERABLE"
	// StatusRecovering means the gateway is rebuilding the tape.
	StatusRecovering TapeStatus = "RECOVERING"
	// StatusUnknown covers statuses this tool has not been updated to
	// handle. Tapes with an unknown status are never eligible for deletion.
	StatusUnknown TapeStatus = "UNKNOWN"
)

// knownStatuses is the set of statuses ParseStatus recognizes.
var knownStatuses = map[TapeStatus]struct{}{
	StatusAvailable:      {},
	StatusArchived:       {},
	StatusInTransitToVTS: {},
	StatusRetrieved:      {},
	StatusCreating:       {},
	StatusDeleting:       {},
	StatusDeleted:        {},
	StatusIrrecoverable:  {},
	StatusRecovering:     {},
}

// ParseStatus converts a raw status string from the API into a TapeStatus.
// Matching is case-insensitive. Unrecognized values map to StatusUnknown
// rather than failing, for forward compatibility with new statuses.
func ParseStatus(raw string) TapeStatus {
	s := TapeStatus(strings.ToUpper(strings.TrimSpace(raw)))
	if _, ok := knownStatuses[s]; ok {
		return s
	}
	return StatusUnknown
}

// KnownStatuses returns the recognized status values in a stable order,
// for validation messages and help text.
func KnownStatuses() []TapeStatus {
	return []TapeStatus{
		StatusAvailable,
		StatusRetrieved,
		StatusArchived,
		StatusCreating,
		StatusInTransitToVTS,
		StatusDeleting,
		StatusDeleted,
		StatusIrrecoverable,
		StatusRecovering,
	}
}

// Deletable reports whether a tape in this status can be deleted at all.
// Active tapes (AVAILABLE, RETRIEVED) are deleted through their owning
// gateway; ARCHIVED tapes are deleted from VTS directly. Everything else,
// including Unknown, is non-deletable.
func (s TapeStatus) Deletable() bool {
	switch s {
	case StatusAvailable, StatusRetrieved, StatusArchived:
		return true
	default:
		return false
	}
}

// Archived reports whether the tape lives in VTS.
func (s TapeStatus) Archived() bool { return s == StatusArchived }

// Tape is a virtual tape record rebuilt from the remote service on every
// run. CreatedAt is nil when the service did not report a creation date,
// which is the norm for archived tapes. GatewayARN is empty until the
// owning gateway has been resolved.
type Tape struct {
	Barcode    string
	ARN        string
	Status     TapeStatus
	CreatedAt  *time.Time
	SizeBytes  int64
	UsedBytes  int64
	GatewayARN string
	PoolID     string
}

// AgeDays returns the tape age in whole days at the given instant, or
// (0, false) when the creation date is unknown.
func (t *Tape) AgeDays(now time.Time) (int, bool) {
	if t.CreatedAt == nil {
		return 0, false
	}
	return int(now.Sub(*t.CreatedAt).Hours() / 24), true
}

// Gateway is a Storage Gateway endpoint discovered within a run.
// Records are immutable once discovered.
type Gateway struct {
	ARN    string
	Name   string
	Type   string
	State  string
	Region string
}

// IsARN reports whether an identifier looks like a full resource ARN
// rather than a tape barcode.
func IsARN(identifier string) bool {
	return strings.HasPrefix(identifier, "arn:")
}

// BarcodeFromARN extracts the trailing tape barcode segment from a tape
// ARN, e.g. "arn:aws:storagegateway:us-east-1:123456789012:tape/VTL001"
// yields "VTL001". Returns "" when the ARN has no tape segment.
func BarcodeFromARN(arn string) string {
	if !IsARN(arn) {
		return ""
	}
	i := strings.LastIndex(arn, "/")
	if i < 0 || i == len(arn)-1 {
		return ""
	}
	return arn[i+1:]
}
