package agentlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ConversationService handles conversation and message operations.
type ConversationService struct {
	client *Client
}

// ConversationListParams filters and paginates conversation listings.
type ConversationListParams struct {
	// TaskID filters to one task's conversations when set.
	TaskID *uuid.UUID

	ListOptions
}

// List returns conversations with the total count across all pages.
func (s *ConversationService) List(ctx context.Context, params ConversationListParams) ([]*Conversation, int, error) {
	q := params.query()
	if params.TaskID != nil {
		q.Set("task_id", params.TaskID.String())
	}

	var conversations []*Conversation
	meta, err := s.client.get(ctx, "list conversations", "/api/v1/conversations", q, &conversations)
	if err != nil {
		return nil, 0, err
	}
	total := len(conversations)
	if meta != nil {
		total = meta.TotalCount
	}
	return conversations, total, nil
}

// Get returns one conversation by ID.
func (s *ConversationService) Get(ctx context.Context, id uuid.UUID) (*Conversation, error) {
	var conversation Conversation
	if _, err := s.client.get(ctx, "get conversation", fmt.Sprintf("/api/v1/conversations/%s", id), nil, &conversation); err != nil {
		return nil, err
	}
	return &conversation, nil
}

// Messages returns a conversation's messages in chronological order, with
// the total count across all pages.
func (s *ConversationService) Messages(ctx context.Context, id uuid.UUID, opts ListOptions) ([]*Message, int, error) {
	var messages []*Message
	path := fmt.Sprintf("/api/v1/conversations/%s/messages", id)
	meta, err := s.client.get(ctx, "list messages", path, opts.query(), &messages)
	if err != nil {
		return nil, 0, err
	}
	total := len(messages)
	if meta != nil {
		total = meta.TotalCount
	}
	return messages, total, nil
}
