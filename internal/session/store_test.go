package session

import (
	"path/filepath"
	"testing"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	store, err := NewStore(filepath.Join(t.TempDir(), "sessions.db"))
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestNewSession_UniqueIDs(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	a, err := store.NewSession("ws")
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	b, err := store.NewSession("ws")
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}
	if a == b || a == "" {
		t.Errorf("expected distinct non-empty ids, got %q and %q", a, b)
	}
}

func TestRecordTurn_SequentialNumbering(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	id, err := store.NewSession("ws")
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}

	for want := 1; want <= 3; want++ {
		n, err := store.RecordTurn(id, "req", "resp", "")
		if err != nil {
			t.Fatalf("RecordTurn error: %v", err)
		}
		if n != want {
			t.Errorf("turn number = %d, want %d", n, want)
		}
	}
}

func TestTurns_RoundTrip(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	id, err := store.NewSession("my-project")
	if err != nil {
		t.Fatalf("NewSession error: %v", err)
	}

	if _, err := store.RecordTurn(id, "build a cli", `{"id":"cli"}`, `{"succeeded":true}`); err != nil {
		t.Fatalf("RecordTurn error: %v", err)
	}
	if _, err := store.RecordTurn(id, "add tests", `{"id":"cli"}`, ""); err != nil {
		t.Fatalf("RecordTurn error: %v", err)
	}

	turns, err := store.Turns(id)
	if err != nil {
		t.Fatalf("Turns error: %v", err)
	}
	if len(turns) != 2 {
		t.Fatalf("expected 2 turns, got %d", len(turns))
	}
	if turns[0].Requirement != "build a cli" || turns[0].ReportJSON != `{"succeeded":true}` {
		t.Errorf("unexpected first turn: %+v", turns[0])
	}
	if turns[1].TurnNumber != 2 || turns[1].ReportJSON != "" {
		t.Errorf("unexpected second turn: %+v", turns[1])
	}
}

func TestTurns_IsolatedBetweenSessions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	a, _ := store.NewSession("ws")
	b, _ := store.NewSession("ws")

	if _, err := store.RecordTurn(a, "only in a", "r", ""); err != nil {
		t.Fatalf("RecordTurn error: %v", err)
	}

	turns, err := store.Turns(b)
	if err != nil {
		t.Fatalf("Turns error: %v", err)
	}
	if len(turns) != 0 {
		t.Errorf("session b should have no turns, got %d", len(turns))
	}
}

func TestRecentSessions(t *testing.T) {
	t.Parallel()

	store := newTestStore(t)
	id, _ := store.NewSession("proj-a")
	store.NewSession("proj-b")
	if _, err := store.RecordTurn(id, "req", "resp", ""); err != nil {
		t.Fatalf("RecordTurn error: %v", err)
	}

	sessions, err := store.RecentSessions(10)
	if err != nil {
		t.Fatalf("RecentSessions error: %v", err)
	}
	if len(sessions) != 2 {
		t.Fatalf("expected 2 sessions, got %d", len(sessions))
	}

	counts := map[string]int{}
	for _, s := range sessions {
		counts[s.Workspace] = s.TurnCount
	}
	if counts["proj-a"] != 1 || counts["proj-b"] != 0 {
		t.Errorf("turn counts = %v", counts)
	}
}

func TestStore_PersistsAcrossReopen(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "sessions.db")
	store, err := NewStore(path)
	if err != nil {
		t.Fatalf("NewStore error: %v", err)
	}
	id, _ := store.NewSession("ws")
	if _, err := store.RecordTurn(id, "req", "resp", ""); err != nil {
		t.Fatalf("RecordTurn error: %v", err)
	}
	store.Close()

	reopened, err := NewStore(path)
	if err != nil {
		t.Fatalf("reopen error: %v", err)
	}
	defer reopened.Close()

	turns, err := reopened.Turns(id)
	if err != nil {
		t.Fatalf("Turns error: %v", err)
	}
	if len(turns) != 1 {
		t.Errorf("expected persisted turn, got %d", len(turns))
	}
}
