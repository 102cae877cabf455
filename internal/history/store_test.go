package history

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := Open(filepath.Join(t.TempDir(), "history.db"))
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func TestRecordAndRecent(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()

	first := Row{TaskKey: "copy a: -> b:", Command: "copy", SrcFs: "a:", DstFs: "b:", JobID: "1"}
	second := Row{TaskKey: "sync c: -> d:", Command: "sync", SrcFs: "c:", DstFs: "d:", JobID: "2"}
	if err := store.Record(ctx, first); err != nil {
		t.Fatal(err)
	}
	if err := store.Record(ctx, second); err != nil {
		t.Fatal(err)
	}

	recent, err := store.Recent(ctx, 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(recent))
	}
	// Newest first.
	if recent[0].JobID != "2" || recent[1].JobID != "1" {
		t.Fatalf("unexpected order: %+v", recent)
	}
	if recent[0].SubmittedAt.IsZero() {
		t.Fatal("submitted_at not populated")
	}
}

func TestRecentLimit(t *testing.T) {
	store := openTestStore(t)
	ctx := context.Background()
	for i := 0; i < 5; i++ {
		row := Row{
			TaskKey: "copy a: -> b:", Command: "copy", SrcFs: "a:", DstFs: "b:",
			JobID: string(rune('0' + i)), SubmittedAt: time.Now().UTC(),
		}
		if err := store.Record(ctx, row); err != nil {
			t.Fatal(err)
		}
	}
	recent, err := store.Recent(ctx, 3)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 3 {
		t.Fatalf("limit not applied: %d", len(recent))
	}
}

func TestReopenKeepsRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "history.db")
	store, err := Open(path)
	if err != nil {
		t.Fatal(err)
	}
	if err := store.Record(context.Background(), Row{TaskKey: "k", Command: "copy", SrcFs: "a:", DstFs: "b:", JobID: "1"}); err != nil {
		t.Fatal(err)
	}
	if err := store.Close(); err != nil {
		t.Fatal(err)
	}

	reopened, err := Open(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()
	recent, err := reopened.Recent(context.Background(), 10)
	if err != nil {
		t.Fatal(err)
	}
	if len(recent) != 1 {
		t.Fatalf("history did not survive reopen: %+v", recent)
	}
}
