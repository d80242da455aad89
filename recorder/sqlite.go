package recorder

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/agentlens/agentlens/stream"
)

// sqliteSchema is applied on open. seq preserves strict insertion order;
// received_at is stored as unix nanoseconds so the retention sweep is a
// plain integer comparison.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS agentlens_events (
	seq         INTEGER PRIMARY KEY AUTOINCREMENT,
	id          TEXT NOT NULL UNIQUE,
	target      TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	data        TEXT NOT NULL,
	received_at INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS agentlens_events_target_seq
	ON agentlens_events (target, seq);
`

// SQLiteSink persists events to a local SQLite database.
type SQLiteSink struct {
	db *sql.DB
}

// DefaultSQLitePath returns the default database location under the user's
// data directory.
func DefaultSQLitePath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("recorder: resolve home: %w", err)
	}
	return filepath.Join(home, ".local", "share", "agentlens", "events.db"), nil
}

// NewSQLiteSink opens the database at path, creating the file and its
// directory if needed, and applies the schema.
func NewSQLiteSink(path string) (*SQLiteSink, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("recorder: create data dir: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("recorder: open database: %w", err)
	}
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("recorder: %s: %w", pragma, err)
		}
	}

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("recorder: apply schema: %w", err)
	}

	return &SQLiteSink{db: db}, nil
}

// Record implements Sink.
func (s *SQLiteSink) Record(ctx context.Context, target string, ev stream.Event) error {
	data, err := encodeData(ev)
	if err != nil {
		return fmt.Errorf("recorder: encode event: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		`INSERT INTO agentlens_events (id, target, event_type, data, received_at)
		 VALUES (?, ?, ?, ?, ?)`,
		uuid.New().String(), target, string(ev.Type), string(data), ev.ReceivedAt.UnixNano(),
	)
	if err != nil {
		return fmt.Errorf("recorder: insert event: %w", err)
	}

	return nil
}

// Events implements Sink.
func (s *SQLiteSink) Events(ctx context.Context, target string, limit int) ([]Recorded, error) {
	if limit <= 0 {
		limit = -1 // sqlite reads a negative limit as no limit
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, event_type, data, received_at
		 FROM agentlens_events
		 WHERE target = ?
		 ORDER BY seq
		 LIMIT ?`,
		target, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("recorder: query events: %w", err)
	}
	defer rows.Close()

	var events []Recorded
	for rows.Next() {
		var (
			rec   Recorded
			id    string
			data  string
			nanos int64
		)
		if err := rows.Scan(&id, &rec.Target, &rec.Type, &data, &nanos); err != nil {
			return nil, fmt.Errorf("recorder: scan event: %w", err)
		}
		rec.ID, err = uuid.Parse(id)
		if err != nil {
			return nil, fmt.Errorf("recorder: parse event id: %w", err)
		}
		rec.Data = []byte(data)
		rec.ReceivedAt = time.Unix(0, nanos)
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorder: iterate events: %w", err)
	}

	return events, nil
}

// DeleteBefore implements Sink.
func (s *SQLiteSink) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM agentlens_events WHERE received_at < ?`, cutoff.UnixNano())
	if err != nil {
		return 0, fmt.Errorf("recorder: delete events: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("recorder: rows affected: %w", err)
	}
	return n, nil
}

// Close closes the database.
func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
