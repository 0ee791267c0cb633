package audit

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/cloudvtl/tapekeeper/pkg/vtl"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(Config{
		Path:        filepath.Join(t.TempDir(), "audit.db"),
		BusyTimeout: time.Second,
	})
	if err != nil {
		t.Fatalf("failed to open store: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func sampleResult(runID string, started time.Time) *vtl.OperationResult {
	r := &vtl.OperationResult{
		RunID:    runID,
		Mode:     vtl.ModeDeleteExpired,
		Region:   "us-east-1",
		Execute:  true,
		Started:  started,
		Finished: started.Add(3 * time.Second),
		Found:    3,
		Eligible: 2,
	}
	r.Record(vtl.DeletionOutcome{Barcode: "VTL001", ARN: "arn:x/VTL001", Status: vtl.StatusArchived, Action: vtl.ActionDeleted})
	r.Record(vtl.DeletionOutcome{
		Barcode: "VTL002", ARN: "arn:x/VTL002", Status: vtl.StatusAvailable,
		Action: vtl.ActionFailed, Reason: "delete failed", Err: errors.New("boom"),
	})
	return r
}

func TestRecordAndListRuns(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Date(2025, 6, 15, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"run-1", "run-2", "run-3"} {
		if err := store.RecordRun(ctx, sampleResult(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("record %s failed: %v", id, err)
		}
	}

	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	// Most recent first.
	if runs[0].RunID != "run-3" || runs[2].RunID != "run-1" {
		t.Errorf("unexpected run order: %v, %v, %v", runs[0].RunID, runs[1].RunID, runs[2].RunID)
	}

	got := runs[0]
	if got.Mode != string(vtl.ModeDeleteExpired) || got.Region != "us-east-1" || !got.Execute {
		t.Errorf("unexpected run fields: %+v", got)
	}
	if got.Found != 3 || got.Deleted != 1 || got.Failed != 1 {
		t.Errorf("unexpected counters: %+v", got)
	}
}

func TestRecentRunsLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	base := time.Now().UTC()
	for i := 0; i < 5; i++ {
		r := sampleResult("run-"+string(rune('a'+i)), base.Add(time.Duration(i)*time.Minute))
		if err := store.RecordRun(ctx, r); err != nil {
			t.Fatalf("record failed: %v", err)
		}
	}

	runs, err := store.RecentRuns(ctx, 2)
	if err != nil {
		t.Fatalf("recent runs failed: %v", err)
	}
	if len(runs) != 2 {
		t.Errorf("expected 2 runs with limit, got %d", len(runs))
	}
}

func TestRecordRunDuplicateID(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	r := sampleResult("run-1", time.Now().UTC())
	if err := store.RecordRun(ctx, r); err != nil {
		t.Fatalf("first record failed: %v", err)
	}
	if err := store.RecordRun(ctx, r); err == nil {
		t.Fatal("expected duplicate run id to be rejected")
	}

	// The failed transaction left no partial rows behind.
	runs, err := store.RecentRuns(ctx, 10)
	if err != nil {
		t.Fatalf("recent runs failed: %v", err)
	}
	if len(runs) != 1 {
		t.Errorf("expected 1 run after rollback, got %d", len(runs))
	}
}

func TestEmptyHistory(t *testing.T) {
	store := openTestStore(t)

	runs, err := store.RecentRuns(context.Background(), 10)
	if err != nil {
		t.Fatalf("recent runs failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty history, got %d runs", len(runs))
	}
}
