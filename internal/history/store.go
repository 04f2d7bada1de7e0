// Package history records finished task runs in a per-project sqlite file so
// the user can review what the agent did across sessions.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"tinker/internal/logging"
)

const schema = `
	CREATE TABLE IF NOT EXISTS tasks (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		task TEXT NOT NULL,
		status TEXT NOT NULL,
		steps INTEGER NOT NULL,
		detail TEXT NOT NULL DEFAULT '',
		started_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_tasks_session ON tasks(session_id);
	CREATE INDEX IF NOT EXISTS idx_tasks_finished ON tasks(finished_at DESC);
`

// Entry is one recorded task run.
type Entry struct {
	ID         int64
	SessionID  string
	Task       string
	Status     string
	Steps      int
	Detail     string
	StartedAt  time.Time
	FinishedAt time.Time
}

// Store is a sqlite-backed task log.
type Store struct {
	db *sql.DB
}

// Open opens or creates the history database at path, creating parent
// directories as needed.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("open history database: %w", err)
	}

	// Pragma failures degrade performance, not correctness.
	if _, err := db.Exec("PRAGMA busy_timeout = 5000"); err != nil {
		logging.HistoryDebug("set sqlite busy_timeout: %v", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		logging.HistoryDebug("set sqlite journal_mode=WAL: %v", err)
	}
	if _, err := db.Exec("PRAGMA synchronous = NORMAL"); err != nil {
		logging.HistoryDebug("set sqlite synchronous=NORMAL: %v", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("create history schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record inserts one finished task run.
func (s *Store) Record(e Entry) error {
	_, err := s.db.Exec(
		`INSERT INTO tasks (session_id, task, status, steps, detail, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		e.SessionID, e.Task, e.Status, e.Steps, e.Detail, e.StartedAt.UTC(), e.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("record task: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(limit int) ([]Entry, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(
		`SELECT id, session_id, task, status, steps, detail, started_at, finished_at
		 FROM tasks ORDER BY finished_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.ID, &e.SessionID, &e.Task, &e.Status, &e.Steps, &e.Detail, &e.StartedAt, &e.FinishedAt); err != nil {
			return nil, fmt.Errorf("scan history row: %w", err)
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}
