package project

import (
	"testing"
	"time"

	"codesmith/internal/workspace"
)

func newTestLedger(t *testing.T) (*Ledger, *workspace.Store) {
	t.Helper()
	store, err := workspace.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	return NewLedger(store), store
}

// =============================================================================
// RECORDING TESTS
// =============================================================================

func TestRecord_HashesContent(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t)
	if err := store.CreateFile("a.txt", "hello"); err != nil {
		t.Fatalf("CreateFile error: %v", err)
	}

	if err := ledger.Record(OpCreate, "a.txt", "initial"); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	history := ledger.History("a.txt")
	if len(history) != 1 {
		t.Fatalf("expected 1 change, got %d", len(history))
	}
	// sha256("hello")
	want := "2cf24dba5fb0a30e26e83b2ac5b9e29e1b161e5c1fa7425e73043362938b9824"
	if history[0].ContentHash != want {
		t.Errorf("hash = %s, want %s", history[0].ContentHash, want)
	}
}

func TestRecord_DeleteHasNoHash(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)
	if err := ledger.Record(OpDelete, "a.txt", "removed"); err != nil {
		t.Fatalf("Record error: %v", err)
	}
	if h := ledger.History("a.txt")[0].ContentHash; h != "" {
		t.Errorf("delete should carry no hash, got %s", h)
	}
}

func TestRecord_WriteThrough(t *testing.T) {
	t.Parallel()

	ledger, store := newTestLedger(t)
	if err := ledger.Record(OpCreate, "a.txt", "one"); err != nil {
		t.Fatalf("Record error: %v", err)
	}

	// A fresh ledger over the same store sees the persisted change.
	reloaded := NewLedger(store)
	if reloaded.Len() != 1 {
		t.Errorf("reloaded ledger has %d changes, want 1", reloaded.Len())
	}
	if got := reloaded.History("a.txt"); len(got) != 1 || got[0].Description != "one" {
		t.Errorf("unexpected reloaded history: %+v", got)
	}
}

func TestNewLedger_CorruptFileStartsFresh(t *testing.T) {
	t.Parallel()

	store, err := workspace.NewStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	if err := store.CreateFile(ChangesFile, "{not json"); err != nil {
		t.Fatalf("CreateFile error: %v", err)
	}

	ledger := NewLedger(store)
	if ledger.Len() != 0 {
		t.Errorf("expected empty ledger, got %d changes", ledger.Len())
	}
}

// =============================================================================
// DERIVED STATE TESTS
// =============================================================================

func TestRecent_NewestFirst(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	ticks := 0
	ledger.now = func() time.Time {
		ticks++
		return base.Add(time.Duration(ticks) * time.Second)
	}

	for _, path := range []string{"t1", "t2", "t3"} {
		if err := ledger.Record(OpCreate, path, ""); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	recent := ledger.Recent(2)
	if len(recent) != 2 {
		t.Fatalf("expected 2 changes, got %d", len(recent))
	}
	if recent[0].Path != "t3" || recent[1].Path != "t2" {
		t.Errorf("recent order = [%s, %s], want [t3, t2]", recent[0].Path, recent[1].Path)
	}
}

func TestTrackedFiles_DeleteRemoves(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)
	steps := []struct{ op, path string }{
		{OpCreate, "a.txt"},
		{OpCreate, "b.txt"},
		{OpDelete, "a.txt"},
	}
	for _, s := range steps {
		if err := ledger.Record(s.op, s.path, ""); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	tracked := ledger.TrackedFiles()
	if len(tracked) != 1 || tracked[0] != "b.txt" {
		t.Errorf("tracked = %v, want [b.txt]", tracked)
	}
}

func TestTrackedFiles_RecreateAfterDelete(t *testing.T) {
	t.Parallel()

	ledger, _ := newTestLedger(t)
	for _, s := range []struct{ op, path string }{
		{OpCreate, "a.txt"},
		{OpDelete, "a.txt"},
		{OpCreate, "a.txt"},
	} {
		if err := ledger.Record(s.op, s.path, ""); err != nil {
			t.Fatalf("Record error: %v", err)
		}
	}

	tracked := ledger.TrackedFiles()
	if len(tracked) != 1 || tracked[0] != "a.txt" {
		t.Errorf("tracked = %v, want [a.txt]", tracked)
	}
}
