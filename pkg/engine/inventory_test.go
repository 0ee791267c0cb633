package engine

import (
	"context"
	"testing"

	"github.com/aws/aws-sdk-go-v2/service/storagegateway/types"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

func TestListAllUnfiltered(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{
			listEntry("VTL001", "AVAILABLE"),
			listEntry("VTL002", "ARCHIVED"),
			listEntry("VTL003", "CREATING"),
		},
		gateways: []string{testGatewayARN},
		details: map[string]map[string]types.Tape{
			testGatewayARN: {
				arnPrefix + "VTL001": detailEntry("VTL001", "AVAILABLE", 45),
			},
		},
	}

	e := newTestEngine(f)
	inv, err := e.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("inventory failed: %v", err)
	}

	if len(inv.Tapes) != 3 || inv.TotalAll != 3 {
		t.Fatalf("expected all 3 tapes, got %d of %d", len(inv.Tapes), inv.TotalAll)
	}
	if inv.Result.Found != 3 {
		t.Errorf("expected Found=3, got %d", inv.Result.Found)
	}
	if inv.Result.ByStatus[vtl.StatusAvailable] != 1 ||
		inv.Result.ByStatus[vtl.StatusArchived] != 1 ||
		inv.Result.ByStatus[vtl.StatusCreating] != 1 {
		t.Errorf("unexpected status breakdown: %v", inv.Result.ByStatus)
	}

	// Inventory never mutates anything.
	if f.mutations() != 0 {
		t.Errorf("inventory made %d mutating calls", f.mutations())
	}
}

func TestListAllStatusFilter(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{
			listEntry("VTL001", "AVAILABLE"),
			listEntry("VTL002", "ARCHIVED"),
			listEntry("VTL003", "ARCHIVED"),
		},
	}

	e := newTestEngine(f)
	// Case-insensitive match.
	inv, err := e.ListAll(context.Background(), []string{"archived"})
	if err != nil {
		t.Fatalf("inventory failed: %v", err)
	}

	if len(inv.Tapes) != 2 {
		t.Fatalf("expected 2 archived tapes, got %d", len(inv.Tapes))
	}
	for _, tape := range inv.Tapes {
		if tape.Status != vtl.StatusArchived {
			t.Errorf("filter leaked tape with status %s", tape.Status)
		}
	}

	// The pre-filter picture is preserved for reporting.
	if inv.TotalAll != 3 {
		t.Errorf("expected TotalAll=3, got %d", inv.TotalAll)
	}
	if len(inv.AllStatuses) != 2 ||
		inv.AllStatuses[0] != vtl.StatusArchived ||
		inv.AllStatuses[1] != vtl.StatusAvailable {
		t.Errorf("expected sorted observed statuses, got %v", inv.AllStatuses)
	}
}

func TestListAllEmptyRegion(t *testing.T) {
	f := &fakeVTL{}

	e := newTestEngine(f)
	inv, err := e.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("inventory failed: %v", err)
	}
	if len(inv.Tapes) != 0 || inv.TotalAll != 0 || inv.Result.Found != 0 {
		t.Errorf("expected deterministic empty inventory, got %+v", inv)
	}
}

func TestListAllEnrichesActiveTapes(t *testing.T) {
	f := &fakeVTL{
		listing: []types.TapeInfo{
			listEntry("VTL001", "AVAILABLE"),
			listEntry("VTL002", "ARCHIVED"),
		},
		gateways: []string{testGatewayARN},
		details: map[string]map[string]types.Tape{
			testGatewayARN: {
				arnPrefix + "VTL001": detailEntry("VTL001", "AVAILABLE", 45),
			},
		},
	}

	e := newTestEngine(f)
	inv, err := e.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("inventory failed: %v", err)
	}

	var active, archived vtl.Tape
	for _, tape := range inv.Tapes {
		switch tape.Barcode {
		case "VTL001":
			active = tape
		case "VTL002":
			archived = tape
		}
	}

	if active.CreatedAt == nil {
		t.Error("active tape should be enriched with a creation date")
	}
	if active.UsedBytes == 0 {
		t.Error("active tape should be enriched with used bytes")
	}
	if active.GatewayARN != testGatewayARN {
		t.Errorf("expected resolved gateway, got %q", active.GatewayARN)
	}

	// Archived tapes have no gateway scope; basic fields only.
	if archived.CreatedAt != nil {
		t.Error("archived tape must keep its unknown creation date")
	}
}

func TestListAllEnrichmentFailureDegrades(t *testing.T) {
	// No gateways at all: resolution fails for the active tape, but the
	// inventory still returns it with listing-level fields.
	f := &fakeVTL{
		listing: []types.TapeInfo{listEntry("VTL001", "AVAILABLE")},
	}

	e := newTestEngine(f)
	inv, err := e.ListAll(context.Background(), nil)
	if err != nil {
		t.Fatalf("enrichment failure must not abort the inventory: %v", err)
	}
	if len(inv.Tapes) != 1 || inv.Tapes[0].Barcode != "VTL001" {
		t.Errorf("expected the tape despite failed enrichment, got %+v", inv.Tapes)
	}
}
