package store

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite" // CGO-free SQLite

	"github.com/vincentbai/replaygen/internal/models"
)

// Store archives analyzed sessions in SQLite, one run per analysis pass.
type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	// WAL + busy timeout to avoid "database is locked"
	db, err := sql.Open("sqlite", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := createTables(db); err != nil {
		db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func createTables(db *sql.DB) error {
	_, err := db.Exec(`
	CREATE TABLE IF NOT EXISTS runs(
	  id         TEXT PRIMARY KEY,
	  created_at TEXT NOT NULL
	);
	CREATE TABLE IF NOT EXISTS sessions(
	  id            INTEGER PRIMARY KEY,
	  run_id        TEXT    NOT NULL REFERENCES runs(id),
	  replay_id     TEXT    NOT NULL,
	  duration_ms   INTEGER NOT NULL,
	  url           TEXT    NOT NULL,
	  action_count  INTEGER NOT NULL,
	  error_count   INTEGER NOT NULL,
	  metadata_json TEXT    NOT NULL CHECK (json_valid(metadata_json))
	);
	CREATE INDEX IF NOT EXISTS idx_sessions_run    ON sessions(run_id);
	CREATE INDEX IF NOT EXISTS idx_sessions_replay ON sessions(replay_id);
	`)
	if err != nil {
		return fmt.Errorf("failed to create database tables: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// SaveRun archives the given sessions under a fresh run id and returns it.
// Duplicate replay ids are archived as-is; the pipeline never deduplicates
// them.
func (s *Store) SaveRun(sessions []models.ReplaySession) (string, error) {
	runID := uuid.NewString()

	transaction, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("failed to begin transaction: %w", err)
	}

	createdAt := time.Now().UTC().Format(time.RFC3339)
	if _, err := transaction.Exec(`INSERT INTO runs(id, created_at) VALUES(?,?)`, runID, createdAt); err != nil {
		_ = transaction.Rollback()
		return "", fmt.Errorf("failed to insert run: %w", err)
	}

	statement, err := transaction.Prepare(`INSERT INTO sessions(run_id, replay_id, duration_ms, url, action_count, error_count, metadata_json)
		VALUES(?,?,?,?,?,?,json(?))`)
	if err != nil {
		_ = transaction.Rollback()
		return "", fmt.Errorf("failed to prepare statement: %w", err)
	}
	defer statement.Close()

	for _, session := range sessions {
		metadataJSON, err := json.Marshal(session.Metadata)
		if err != nil {
			_ = transaction.Rollback()
			return "", fmt.Errorf("failed to marshal session metadata: %w", err)
		}
		_, err = statement.Exec(runID, session.ReplayID, session.Duration, session.URL,
			len(session.Actions), len(session.Errors), string(metadataJSON))
		if err != nil {
			_ = transaction.Rollback()
			return "", fmt.Errorf("failed to execute statement: %w", err)
		}
	}
	if err := transaction.Commit(); err != nil {
		return "", fmt.Errorf("failed to commit transaction: %w", err)
	}
	return runID, nil
}

// ArchivedSession is one row of an archived run.
type ArchivedSession struct {
	RunID       string
	ReplayID    string
	Duration    int64
	URL         string
	ActionCount int
	ErrorCount  int
	Metadata    map[string]any
}

// ListRunSessions returns the sessions archived under runID in insert order.
func (s *Store) ListRunSessions(runID string) ([]ArchivedSession, error) {
	rows, err := s.db.Query(`SELECT run_id, replay_id, duration_ms, url, action_count, error_count, metadata_json
		FROM sessions WHERE run_id = ? ORDER BY id`, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query sessions: %w", err)
	}
	defer rows.Close()

	var sessions []ArchivedSession
	for rows.Next() {
		var archived ArchivedSession
		var metadataJSON string
		if err := rows.Scan(&archived.RunID, &archived.ReplayID, &archived.Duration, &archived.URL,
			&archived.ActionCount, &archived.ErrorCount, &metadataJSON); err != nil {
			return nil, fmt.Errorf("failed to scan session row: %w", err)
		}
		if err := json.Unmarshal([]byte(metadataJSON), &archived.Metadata); err != nil {
			return nil, fmt.Errorf("failed to unmarshal session metadata: %w", err)
		}
		sessions = append(sessions, archived)
	}
	return sessions, rows.Err()
}
