// Package session persists conversation history in SQLite so a chat can
// be resumed and past scaffolding runs inspected.
package session

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"codesmith/internal/logging"
)

// Session is one conversation with the assistant.
type Session struct {
	ID        string
	Workspace string
	CreatedAt time.Time
	TurnCount int
}

// Turn is one requirement/response exchange within a session.
// ReportJSON carries the execution report when the turn produced one.
type Turn struct {
	SessionID   string
	TurnNumber  int
	Requirement string
	Response    string
	ReportJSON  string
	CreatedAt   time.Time
}

// Store wraps the SQLite database. A single connection is used; the
// mutex serializes writers.
type Store struct {
	db     *sql.DB
	mu     sync.RWMutex
	dbPath string
}

// NewStore opens or creates the session database at path.
func NewStore(path string) (*Store, error) {
	logging.Session("Opening session store at %s", path)

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.SessionDebug("Failed to set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.SessionDebug("Failed to set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.SessionDebug("Failed to set sqlite synchronous=NORMAL: %v", err)
	}

	s := &Store{db: db, dbPath: path}
	if err := s.initialize(); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) initialize() error {
	schema := `
	CREATE TABLE IF NOT EXISTS sessions (
		id TEXT PRIMARY KEY,
		workspace TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS session_turns (
		session_id TEXT NOT NULL,
		turn_number INTEGER NOT NULL,
		requirement TEXT NOT NULL,
		response TEXT NOT NULL,
		report_json TEXT,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (session_id, turn_number),
		FOREIGN KEY (session_id) REFERENCES sessions(id)
	);

	CREATE INDEX IF NOT EXISTS idx_turns_session ON session_turns(session_id);
	`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to initialize schema: %w", err)
	}
	return nil
}

// NewSession creates a session bound to a workspace and returns its id.
func (s *Store) NewSession(workspaceName string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := uuid.New().String()
	_, err := s.db.Exec(
		"INSERT INTO sessions (id, workspace) VALUES (?, ?)",
		id, workspaceName,
	)
	if err != nil {
		logging.SessionError("Failed to create session: %v", err)
		return "", fmt.Errorf("failed to create session: %w", err)
	}

	logging.Session("Created session %s for workspace %s", id, workspaceName)
	return id, nil
}

// RecordTurn appends a turn to a session. Turn numbers start at 1 and
// are assigned here; a duplicate (session, turn) pair is silently skipped.
func (s *Store) RecordTurn(sessionID, requirement, response, reportJSON string) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var next int
	err := s.db.QueryRow(
		"SELECT COALESCE(MAX(turn_number), 0) + 1 FROM session_turns WHERE session_id = ?",
		sessionID,
	).Scan(&next)
	if err != nil {
		return 0, fmt.Errorf("failed to number turn: %w", err)
	}

	_, err = s.db.Exec(
		`INSERT OR IGNORE INTO session_turns (session_id, turn_number, requirement, response, report_json)
		 VALUES (?, ?, ?, ?, ?)`,
		sessionID, next, requirement, response, reportJSON,
	)
	if err != nil {
		logging.SessionError("Failed to record turn %d for %s: %v", next, sessionID, err)
		return 0, fmt.Errorf("failed to record turn: %w", err)
	}

	logging.SessionDebug("Recorded turn %d for session %s", next, sessionID)
	return next, nil
}

// Turns returns all turns of a session in order.
func (s *Store) Turns(sessionID string) ([]Turn, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(
		`SELECT session_id, turn_number, requirement, response, COALESCE(report_json, ''), created_at
		 FROM session_turns WHERE session_id = ? ORDER BY turn_number`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query turns: %w", err)
	}
	defer rows.Close()

	var turns []Turn
	for rows.Next() {
		var t Turn
		if err := rows.Scan(&t.SessionID, &t.TurnNumber, &t.Requirement, &t.Response, &t.ReportJSON, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan turn: %w", err)
		}
		turns = append(turns, t)
	}
	return turns, rows.Err()
}

// RecentSessions returns up to limit sessions, newest first, with their
// turn counts.
func (s *Store) RecentSessions(limit int) ([]Session, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	rows, err := s.db.Query(
		`SELECT s.id, s.workspace, s.created_at, COUNT(t.turn_number)
		 FROM sessions s
		 LEFT JOIN session_turns t ON t.session_id = s.id
		 GROUP BY s.id
		 ORDER BY s.created_at DESC
		 LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []Session
	for rows.Next() {
		var sess Session
		if err := rows.Scan(&sess.ID, &sess.Workspace, &sess.CreatedAt, &sess.TurnCount); err != nil {
			return nil, fmt.Errorf("failed to scan session: %w", err)
		}
		sessions = append(sessions, sess)
	}
	return sessions, rows.Err()
}

// Close closes the database.
func (s *Store) Close() error {
	logging.SessionDebug("Closing session store")
	return s.db.Close()
}
