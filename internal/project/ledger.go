// Package project tracks what the assistant has done to a workspace: an
// append-only change ledger plus project metadata, both persisted under
// the .smith directory.
package project

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"sort"
	"time"

	"codesmith/internal/logging"
	"codesmith/internal/workspace"
)

// Change operations.
const (
	OpCreate = "create"
	OpModify = "modify"
	OpDelete = "delete"
)

// ChangesFile is where the ledger persists, relative to the workspace root.
const ChangesFile = ".smith/changes.json"

// FileChange is one ledger entry. ContentHash is the sha256 of the file
// content at record time, empty for deletes.
type FileChange struct {
	Timestamp   time.Time `json:"timestamp"`
	Operation   string    `json:"operation"`
	Path        string    `json:"path"`
	Description string    `json:"description"`
	ContentHash string    `json:"content_hash,omitempty"`
}

// Ledger is the append-only record of workspace mutations. Every Record
// call persists immediately, so a crash loses at most the change that
// was being recorded.
type Ledger struct {
	store   *workspace.Store
	changes []FileChange
	now     func() time.Time
}

// NewLedger opens the ledger for a workspace, loading any persisted
// history. A missing or unreadable changes file starts an empty ledger.
func NewLedger(store *workspace.Store) *Ledger {
	l := &Ledger{store: store, now: time.Now}

	raw, ok, err := store.ReadFile(ChangesFile)
	if err != nil || !ok {
		return l
	}
	if err := json.Unmarshal([]byte(raw), &l.changes); err != nil {
		logging.LedgerError("Corrupt changes file, starting fresh: %v", err)
		l.changes = nil
	}
	logging.LedgerDebug("Loaded %d changes", len(l.changes))
	return l
}

// Record appends a change and persists the ledger. For anything but a
// delete, the current file content is hashed so later drift is detectable.
func (l *Ledger) Record(operation, path, description string) error {
	change := FileChange{
		Timestamp:   l.now(),
		Operation:   operation,
		Path:        path,
		Description: description,
	}

	if operation != OpDelete {
		if content, ok, err := l.store.ReadFile(path); err == nil && ok {
			sum := sha256.Sum256([]byte(content))
			change.ContentHash = hex.EncodeToString(sum[:])
		}
	}

	l.changes = append(l.changes, change)
	if err := l.persist(); err != nil {
		return err
	}

	logging.Ledger("Recorded %s: %s", operation, path)
	return nil
}

// History returns every change for a path, oldest first.
func (l *Ledger) History(path string) []FileChange {
	var out []FileChange
	for _, c := range l.changes {
		if c.Path == path {
			out = append(out, c)
		}
	}
	return out
}

// Recent returns up to limit changes, newest first.
func (l *Ledger) Recent(limit int) []FileChange {
	sorted := make([]FileChange, len(l.changes))
	copy(sorted, l.changes)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Timestamp.After(sorted[j].Timestamp)
	})
	if limit > 0 && len(sorted) > limit {
		sorted = sorted[:limit]
	}
	return sorted
}

// TrackedFiles derives the set of live paths by replaying the ledger:
// a create or modify adds the path, a delete removes it. The result is
// sorted for stable output.
func (l *Ledger) TrackedFiles() []string {
	live := make(map[string]bool)
	for _, c := range l.changes {
		if c.Operation == OpDelete {
			delete(live, c.Path)
		} else {
			live[c.Path] = true
		}
	}

	out := make([]string, 0, len(live))
	for p := range live {
		out = append(out, p)
	}
	sort.Strings(out)
	return out
}

// Len returns the total number of recorded changes.
func (l *Ledger) Len() int {
	return len(l.changes)
}

func (l *Ledger) persist() error {
	data, err := json.MarshalIndent(l.changes, "", "  ")
	if err != nil {
		return fmt.Errorf("encode changes: %w", err)
	}
	return l.store.CreateFile(ChangesFile, string(data))
}
