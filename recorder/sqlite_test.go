package recorder

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens/stream"
)

func TestSQLiteSink_RoundTrip(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	defer sink.Close()

	base := time.Now().Add(-time.Minute)
	events := []stream.Event{
		{Type: stream.EventTaskStarted, Data: map[string]any{"task_id": "t1"}, ReceivedAt: base},
		{Type: stream.EventBudgetWarning, Data: map[string]any{"percent_used": 80}, ReceivedAt: base.Add(time.Second)},
		{Type: stream.EventMessage, Data: "plain text", ReceivedAt: base.Add(2 * time.Second)},
	}
	for i, ev := range events {
		if err := sink.Record(ctx, "task-1", ev); err != nil {
			t.Fatalf("Record(%d) error = %v", i, err)
		}
	}
	// An event on another target must not come back for task-1.
	if err := sink.Record(ctx, "task-2", stream.Event{Type: stream.EventConnected, Data: map[string]any{}, ReceivedAt: base}); err != nil {
		t.Fatalf("Record() error = %v", err)
	}

	got, err := sink.Events(ctx, "task-1", 0)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("got %d events, want 3", len(got))
	}

	wantTypes := []string{"task_started", "budget_warning", "message"}
	for i, rec := range got {
		if rec.Type != wantTypes[i] {
			t.Errorf("event %d type = %q, want %q", i, rec.Type, wantTypes[i])
		}
		if rec.ID == uuid.Nil {
			t.Errorf("event %d has a zero id", i)
		}
		if rec.Target != "task-1" {
			t.Errorf("event %d target = %q", i, rec.Target)
		}
		if want := events[i].ReceivedAt.UnixNano(); rec.ReceivedAt.UnixNano() != want {
			t.Errorf("event %d received_at = %d, want %d", i, rec.ReceivedAt.UnixNano(), want)
		}
	}

	if string(got[0].Data) != `{"task_id":"t1"}` {
		t.Errorf("event 0 data = %s", got[0].Data)
	}
	if string(got[2].Data) != `"plain text"` {
		t.Errorf("raw payload stored as %s, want JSON string", got[2].Data)
	}

	limited, err := sink.Events(ctx, "task-1", 2)
	if err != nil {
		t.Fatalf("Events(limit=2) error = %v", err)
	}
	if len(limited) != 2 || limited[0].Type != "task_started" || limited[1].Type != "budget_warning" {
		t.Errorf("limited query returned %d events", len(limited))
	}
}

func TestSQLiteSink_DeleteBefore(t *testing.T) {
	ctx := context.Background()
	sink, err := NewSQLiteSink(filepath.Join(t.TempDir(), "events.db"))
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	defer sink.Close()

	now := time.Now()
	for _, age := range []time.Duration{2 * time.Hour, time.Hour, 0} {
		ev := stream.Event{Type: stream.EventMessage, Data: map[string]any{}, ReceivedAt: now.Add(-age)}
		if err := sink.Record(ctx, "t", ev); err != nil {
			t.Fatalf("Record() error = %v", err)
		}
	}

	removed, err := sink.DeleteBefore(ctx, now.Add(-90*time.Minute))
	if err != nil {
		t.Fatalf("DeleteBefore() error = %v", err)
	}
	if removed != 1 {
		t.Errorf("DeleteBefore() removed %d, want 1", removed)
	}

	left, err := sink.Events(ctx, "t", 0)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(left) != 2 {
		t.Errorf("%d events left, want 2", len(left))
	}
}

func TestSQLiteSink_Reopen(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "events.db")

	sink, err := NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("NewSQLiteSink() error = %v", err)
	}
	ev := stream.Event{Type: stream.EventTaskCreated, Data: map[string]any{"task_id": "t1"}, ReceivedAt: time.Now()}
	if err := sink.Record(ctx, "t", ev); err != nil {
		t.Fatalf("Record() error = %v", err)
	}
	if err := sink.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	// Reopening applies the schema again without clobbering data.
	sink, err = NewSQLiteSink(path)
	if err != nil {
		t.Fatalf("reopen error = %v", err)
	}
	defer sink.Close()

	ev.ReceivedAt = time.Now()
	if err := sink.Record(ctx, "t", ev); err != nil {
		t.Fatalf("Record() after reopen error = %v", err)
	}

	got, err := sink.Events(ctx, "t", 0)
	if err != nil {
		t.Fatalf("Events() error = %v", err)
	}
	if len(got) != 2 {
		t.Errorf("got %d events after reopen, want 2", len(got))
	}
}
