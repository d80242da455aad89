package recorder

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/agentlens/agentlens/stream"
)

// postgresSchema is applied when the sink is created. seq preserves strict
// insertion order across writers.
const postgresSchema = `
CREATE TABLE IF NOT EXISTS agentlens_events (
	seq         BIGSERIAL PRIMARY KEY,
	id          UUID NOT NULL UNIQUE,
	target      TEXT NOT NULL,
	event_type  TEXT NOT NULL,
	data        JSONB NOT NULL,
	received_at TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS agentlens_events_target_seq
	ON agentlens_events (target, seq);
`

// PostgresSink persists events to PostgreSQL, for deployments where
// recordings are shared between operators.
type PostgresSink struct {
	pool *pgxpool.Pool
}

// NewPostgresSink wraps a connection pool and applies the schema.
func NewPostgresSink(ctx context.Context, pool *pgxpool.Pool) (*PostgresSink, error) {
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		return nil, fmt.Errorf("recorder: apply schema: %w", err)
	}
	return &PostgresSink{pool: pool}, nil
}

// Record implements Sink.
func (s *PostgresSink) Record(ctx context.Context, target string, ev stream.Event) error {
	data, err := encodeData(ev)
	if err != nil {
		return fmt.Errorf("recorder: encode event: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO agentlens_events (id, target, event_type, data, received_at)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), target, string(ev.Type), string(data), ev.ReceivedAt,
	)
	if err != nil {
		return fmt.Errorf("recorder: insert event: %w", err)
	}

	return nil
}

// Events implements Sink.
func (s *PostgresSink) Events(ctx context.Context, target string, limit int) ([]Recorded, error) {
	var limitArg any
	if limit > 0 {
		limitArg = limit // NULL limit means no limit
	}

	rows, err := s.pool.Query(ctx,
		`SELECT id, target, event_type, data, received_at
		 FROM agentlens_events
		 WHERE target = $1
		 ORDER BY seq
		 LIMIT $2`,
		target, limitArg,
	)
	if err != nil {
		return nil, fmt.Errorf("recorder: query events: %w", err)
	}
	defer rows.Close()

	var events []Recorded
	for rows.Next() {
		var rec Recorded
		if err := rows.Scan(&rec.ID, &rec.Target, &rec.Type, &rec.Data, &rec.ReceivedAt); err != nil {
			return nil, fmt.Errorf("recorder: scan event: %w", err)
		}
		events = append(events, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("recorder: iterate events: %w", err)
	}

	return events, nil
}

// DeleteBefore implements Sink.
func (s *PostgresSink) DeleteBefore(ctx context.Context, cutoff time.Time) (int64, error) {
	tag, err := s.pool.Exec(ctx,
		`DELETE FROM agentlens_events WHERE received_at < $1`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("recorder: delete events: %w", err)
	}
	return tag.RowsAffected(), nil
}

// Close closes the underlying pool.
func (s *PostgresSink) Close() error {
	s.pool.Close()
	return nil
}
