package transcript

import (
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens"
)

func testConversation() (*agentlens.Conversation, []*agentlens.Message) {
	convID := uuid.New()
	taskID := uuid.New()
	at := time.Date(2026, 8, 25, 10, 30, 0, 0, time.UTC)

	conv := &agentlens.Conversation{
		ID:           convID,
		TaskID:       taskID,
		Title:        "Incident summary",
		MessageCount: 3,
		CreatedAt:    at,
	}

	messages := []*agentlens.Message{
		{
			ID:             uuid.New(),
			ConversationID: convID,
			Role:           agentlens.MessageRoleUser,
			Content:        "Summarize the incident.",
			CreatedAt:      at,
		},
		{
			ID:             uuid.New(),
			ConversationID: convID,
			Role:           agentlens.MessageRoleAssistant,
			Content:        "Looking at the logs now.",
			ToolCalls: []agentlens.ToolCall{
				{Tool: "search", Input: `{"query":"error rate"}`, Result: "3 spikes found"},
			},
			Usage:     &agentlens.Usage{InputTokens: 1200, OutputTokens: 80},
			CreatedAt: at.Add(5 * time.Second),
		},
		{
			ID:             uuid.New(),
			ConversationID: convID,
			Role:           agentlens.MessageRoleAssistant,
			Content:        "The incident was caused by a bad deploy.",
			Usage:          &agentlens.Usage{InputTokens: 1500, OutputTokens: 200},
			CreatedAt:      at.Add(10 * time.Second),
		},
	}

	return conv, messages
}

func TestMarkdown(t *testing.T) {
	conv, messages := testConversation()

	got := Markdown(conv, messages)

	for _, want := range []string{
		"# Incident summary",
		"## User — 10:30:00",
		"## Assistant — 10:30:05",
		"### Tool: search",
		"```json\n{\"query\":\"error rate\"}\n```",
		"Result:\n\n```\n3 spikes found\n```",
		"3 messages",
		"2.7K input tokens",
		"280 output tokens",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("Markdown() missing %q\n\n%s", want, got)
		}
	}
}

func TestMarkdown_ToolError(t *testing.T) {
	conv, _ := testConversation()
	messages := []*agentlens.Message{{
		Role: agentlens.MessageRoleAssistant,
		ToolCalls: []agentlens.ToolCall{
			{Tool: "deploy", Input: `{}`, Error: "permission denied"},
		},
	}}

	got := Markdown(conv, messages)
	if !strings.Contains(got, "Error:\n\n```\npermission denied\n```") {
		t.Errorf("Markdown() missing tool error block\n\n%s", got)
	}
	if strings.Contains(got, "Result:") {
		t.Error("Markdown() renders a result block for a failed call")
	}
}

func TestHTML_Sanitized(t *testing.T) {
	conv, messages := testConversation()
	messages[0].Content = `<script>alert("x")</script>before **bold** after`

	got, err := HTML(conv, messages)
	if err != nil {
		t.Fatalf("HTML() error = %v", err)
	}

	if strings.Contains(got, "<script") {
		t.Error("HTML() leaks a script tag")
	}
	if !strings.Contains(got, "<strong>bold</strong>") {
		t.Errorf("HTML() did not render markdown emphasis\n\n%s", got)
	}
	if !strings.Contains(got, "<h2") {
		t.Error("HTML() missing message headers")
	}
}

func TestText(t *testing.T) {
	conv, messages := testConversation()

	got := Text(conv, messages)

	if !strings.Contains(got, "[user 10:30:00]") {
		t.Errorf("Text() missing role header\n\n%s", got)
	}
	if !strings.Contains(got, "tool search: 3 spikes found") {
		t.Errorf("Text() missing tool line\n\n%s", got)
	}
	if !strings.Contains(got, "Incident summary") {
		t.Error("Text() missing title")
	}
}

func TestText_NilConversation(t *testing.T) {
	_, messages := testConversation()

	got := Text(nil, messages)
	if !strings.Contains(got, "Summarize the incident.") {
		t.Errorf("Text(nil, ...) missing content\n\n%s", got)
	}
}
