package engine

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/storagegateway/types"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

func TestDeleteByIdentifierMatchesBarcodeAndARN(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{
			listEntry("VTL001", "ARCHIVED"),
			listEntry("VTL002", "ARCHIVED"),
			listEntry("VTL003", "ARCHIVED"),
		},
	}

	e := newTestEngine(f)
	// One barcode, one full ARN; same matching semantics.
	ids := []string{"VTL001", arnPrefix + "VTL003"}
	result, err := e.DeleteByIdentifier(context.Background(), ids, true)
	if err != nil {
		t.Fatalf("targeted delete failed: %v", err)
	}

	if result.Found != 2 || result.Deleted != 2 {
		t.Errorf("expected 2 found and deleted, got found=%d deleted=%d",
			result.Found, result.Deleted)
	}
	if len(f.deletedArchives) != 2 {
		t.Fatalf("expected 2 deletions, got %v", f.deletedArchives)
	}
	// Input order is processing order.
	if f.deletedArchives[0] != arnPrefix+"VTL001" || f.deletedArchives[1] != arnPrefix+"VTL003" {
		t.Errorf("unexpected deletion order: %v", f.deletedArchives)
	}
}

func TestDeleteByIdentifierReportsNotFound(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{listEntry("VTL001", "ARCHIVED")},
	}

	e := newTestEngine(f)
	ids := []string{"MISSING1", "VTL001", "MISSING2"}
	result, err := e.DeleteByIdentifier(context.Background(), ids, true)
	if err != nil {
		t.Fatalf("missing tapes must not abort the batch: %v", err)
	}

	if result.NotFound != 2 {
		t.Errorf("expected 2 not found, got %d", result.NotFound)
	}
	if len(result.NotFoundIdentifiers) != 2 ||
		result.NotFoundIdentifiers[0] != "MISSING1" ||
		result.NotFoundIdentifiers[1] != "MISSING2" {
		t.Errorf("unexpected not-found identifiers: %v", result.NotFoundIdentifiers)
	}
	if result.Deleted != 1 {
		t.Errorf("the matched tape still gets deleted, got %d", result.Deleted)
	}
}

func TestDeleteByIdentifierSkipsNonDeletableStatus(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{
			listEntry("VTL001", "CREATING"),
			listEntry("VTL002", "IN_TRANSIT_TO_VTS"),
			listEntry("VTL003", "DELETING"),
		},
	}

	e := newTestEngine(f)
	result, err := e.DeleteByIdentifier(context.Background(), []string{"VTL001", "VTL002", "VTL003"}, true)
	if err != nil {
		t.Fatalf("targeted delete failed: %v", err)
	}

	if result.Skipped != 3 || f.mutations() != 0 {
		t.Errorf("expected 3 skipped and no mutations, got skipped=%d mutations=%d",
			result.Skipped, f.mutations())
	}
	for _, o := range result.Outcomes {
		if o.Action != vtl.ActionSkipped || o.Reason != "non-deletable status" {
			t.Errorf("unexpected outcome: %+v", o)
		}
	}
}

func TestDeleteByIdentifierDryRun(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{listEntry("VTL001", "ARCHIVED")},
	}

	e := newTestEngine(f)
	result, err := e.DeleteByIdentifier(context.Background(), []string{"VTL001"}, false)
	if err != nil {
		t.Fatalf("dry run failed: %v", err)
	}
	if result.WouldDelete != 1 || f.mutations() != 0 {
		t.Errorf("expected planned deletion only, got would=%d mutations=%d",
			result.WouldDelete, f.mutations())
	}
}
