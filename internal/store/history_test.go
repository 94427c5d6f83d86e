package store

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"github.com/ginjaninja78/picking-list/internal/types"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(context.Background(), filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func listAt(id string, at time.Time, entries ...types.PickingEntry) *types.PickingList {
	return &types.PickingList{
		RunID:          id,
		SourceFile:     "orders.csv",
		ShippingMethod: "ネコポス",
		LoadedAt:       at,
		Entries:        entries,
		Total:          len(entries),
		ExcludedCount:  1,
	}
}

func TestStore_RecordAndGetRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	at := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	list := listAt("run-1", at,
		types.PickingEntry{ProductName: "カレー", JANCode: "J1", Quantity: 2, NormalizedUnits: 12},
		types.PickingEntry{ProductName: "セット", JANCode: "J2", ParentJANCode: "P", Quantity: 1, NormalizedUnits: 1, ParentNormalizedUnits: 6},
	)
	if err := s.RecordRun(ctx, list); err != nil {
		t.Fatalf("record: %v", err)
	}

	run, entries, err := s.GetRun(ctx, "run-1")
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if run.EntryCount != 2 || run.ShippingMethod != "ネコポス" || !run.LoadedAt.Equal(at) {
		t.Errorf("unexpected run: %+v", run)
	}
	if len(entries) != 2 || entries[1].Entry() != list.Entries[1] {
		t.Errorf("unexpected entries: %+v", entries)
	}
}

func TestStore_GetRunNotFound(t *testing.T) {
	s := openTestStore(t)

	_, _, err := s.GetRun(context.Background(), "missing")
	if !errors.Is(err, ErrRunNotFound) {
		t.Errorf("expected ErrRunNotFound, got %v", err)
	}
}

func TestStore_ListRunsNewestFirst(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	for i, id := range []string{"a", "b", "c"} {
		if err := s.RecordRun(ctx, listAt(id, base.Add(time.Duration(i)*time.Hour))); err != nil {
			t.Fatalf("record %s: %v", id, err)
		}
	}

	runs, err := s.ListRuns(ctx, 2)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(runs) != 2 || runs[0].RunID != "c" || runs[1].RunID != "b" {
		t.Errorf("unexpected order: %+v", runs)
	}
}

func TestStore_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	base := time.Date(2024, 5, 1, 9, 0, 0, 0, time.UTC)

	if err := s.RecordRun(ctx, listAt("old", base, types.PickingEntry{ProductName: "x", Quantity: 1})); err != nil {
		t.Fatal(err)
	}
	if err := s.RecordRun(ctx, listAt("new", base.Add(48*time.Hour))); err != nil {
		t.Fatal(err)
	}

	n, err := s.DeleteBefore(ctx, base.Add(24*time.Hour))
	if err != nil {
		t.Fatalf("delete: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 run removed, got %d", n)
	}

	runs, err := s.ListRuns(ctx, 0)
	if err != nil {
		t.Fatal(err)
	}
	if len(runs) != 1 || runs[0].RunID != "new" {
		t.Errorf("unexpected remaining runs: %+v", runs)
	}
}

func TestStore_RecordRunRequiresID(t *testing.T) {
	s := openTestStore(t)
	if err := s.RecordRun(context.Background(), &types.PickingList{}); err == nil {
		t.Error("expected error for missing run ID")
	}
}
