// Package history keeps an optional SQLite log of dictation cycles.
package history

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// Outcome is how a dictation cycle ended.
type Outcome string

const (
	OutcomeTyped  Outcome = "typed"
	OutcomeEmpty  Outcome = "empty"
	OutcomeFailed Outcome = "failed"
)

// Entry is one dictation cycle.
type Entry struct {
	CycleID   uuid.UUID     `yaml:"cycle"`
	Engine    string        `yaml:"engine"`
	StartedAt time.Time     `yaml:"started_at"`
	Duration  time.Duration `yaml:"duration"`
	Outcome   Outcome       `yaml:"outcome"`
	Text      string        `yaml:"text,omitempty"`
	Error     string        `yaml:"error,omitempty"`
}

// Store persists entries in a SQLite database.
type Store struct {
	db *sql.DB
}

const schema = `
	CREATE TABLE IF NOT EXISTS cycles (
		id TEXT PRIMARY KEY,
		engine TEXT NOT NULL,
		startedAt REAL NOT NULL,
		durationMs INTEGER NOT NULL,
		outcome TEXT NOT NULL,
		text TEXT NOT NULL DEFAULT '',
		error TEXT NOT NULL DEFAULT ''
	);
	CREATE INDEX IF NOT EXISTS cycles_startedAt ON cycles(startedAt);
`

// DefaultPath returns the suggested history_path.
func DefaultPath() string {
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "voicetyper", "history.sqlite")
}

// Open opens or creates the database at path.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("history: create dir: %w", err)
	}

	dsn := fmt.Sprintf("file:%s?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: ping database: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record stores one entry.
func (s *Store) Record(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO cycles (id, engine, startedAt, durationMs, outcome, text, error)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, e.CycleID.String(), e.Engine, unixFromTime(e.StartedAt), e.Duration.Milliseconds(),
		string(e.Outcome), e.Text, e.Error)
	if err != nil {
		return fmt.Errorf("history: insert cycle: %w", err)
	}
	return nil
}

// Recent returns up to limit entries, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, engine, startedAt, durationMs, outcome, text, error
		FROM cycles
		ORDER BY startedAt DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query cycles: %w", err)
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var (
			e         Entry
			id        string
			startedAt float64
			ms        int64
			outcome   string
		)
		if err := rows.Scan(&id, &e.Engine, &startedAt, &ms, &outcome, &e.Text, &e.Error); err != nil {
			return nil, fmt.Errorf("history: scan cycle: %w", err)
		}
		if e.CycleID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("history: cycle id %q: %w", id, err)
		}
		e.StartedAt = timeFromUnix(startedAt)
		e.Duration = time.Duration(ms) * time.Millisecond
		e.Outcome = Outcome(outcome)
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func unixFromTime(t time.Time) float64 {
	return float64(t.UnixNano()) / 1e9
}

func timeFromUnix(f float64) time.Time {
	sec := int64(f)
	nsec := int64((f - float64(sec)) * 1e9)
	return time.Unix(sec, nsec)
}
