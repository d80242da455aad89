package stream

import (
	"testing"
	"time"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		want EventType
	}{
		{"connected", EventConnected},
		{"task_started", EventTaskStarted},
		{"tool_call_failed", EventToolCallFailed},
		{"budget_exceeded", EventBudgetExceeded},
		{"error", EventError},
		{"message", EventMessage},
		{"", EventMessage},
		{"not_a_known_event", EventMessage},
		{"TASK_STARTED", EventMessage},
	}

	for _, tt := range tests {
		if got := Classify(tt.name); got != tt.want {
			t.Errorf("Classify(%q) = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestEventType_IsTerminal(t *testing.T) {
	if !EventTaskCompleted.IsTerminal() {
		t.Error("task_completed should be terminal")
	}
	if !EventTaskFailed.IsTerminal() {
		t.Error("task_failed should be terminal")
	}
	if EventTaskPaused.IsTerminal() {
		t.Error("task_paused should not be terminal")
	}
	if EventMessage.IsTerminal() {
		t.Error("message should not be terminal")
	}
}

func TestEventTypes_CoversVocabulary(t *testing.T) {
	types := EventTypes()
	if len(types) != 24 {
		t.Fatalf("len(EventTypes()) = %d, want 24", len(types))
	}
	for _, typ := range types {
		if Classify(typ.String()) != typ {
			t.Errorf("Classify(%q) does not round-trip", typ)
		}
	}
}

func TestEvent_Decode(t *testing.T) {
	ev := Event{
		Type: EventLLMCallCompleted,
		Data: map[string]any{
			"model":         "claude-sonnet-4-5",
			"input_tokens":  float64(1200),
			"output_tokens": float64(340),
		},
		ReceivedAt: time.Now(),
	}

	var p LLMCallPayload
	if err := ev.Decode(&p); err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if p.Model != "claude-sonnet-4-5" {
		t.Errorf("Model = %q", p.Model)
	}
	if p.InputTokens != 1200 || p.OutputTokens != 340 {
		t.Errorf("tokens = %d/%d, want 1200/340", p.InputTokens, p.OutputTokens)
	}
}

func TestEvent_DecodeRawString(t *testing.T) {
	ev := Event{Type: EventMessage, Data: "not-json{"}

	var p TaskPayload
	if err := ev.Decode(&p); err == nil {
		t.Fatal("Decode() of a raw-string payload should fail")
	}
}
