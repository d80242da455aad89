package agentlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ApprovalService handles human approval operations.
type ApprovalService struct {
	client *Client
}

// ApprovalListParams filters and paginates approval listings.
type ApprovalListParams struct {
	// Status filters to one approval state when set. List pending approvals
	// with ApprovalStatusPending.
	Status ApprovalStatus

	// TaskID filters to one task's approvals when set.
	TaskID *uuid.UUID

	ListOptions
}

// ApprovalDecision is an operator's response to an approval request.
type ApprovalDecision struct {
	Approved bool   `json:"approved"`
	Comment  string `json:"comment,omitempty"`
}

// List returns approvals with the total count across all pages.
func (s *ApprovalService) List(ctx context.Context, params ApprovalListParams) ([]*Approval, int, error) {
	q := params.query()
	if params.Status != "" {
		q.Set("status", params.Status.String())
	}
	if params.TaskID != nil {
		q.Set("task_id", params.TaskID.String())
	}

	var approvals []*Approval
	meta, err := s.client.get(ctx, "list approvals", "/api/v1/approvals", q, &approvals)
	if err != nil {
		return nil, 0, err
	}
	total := len(approvals)
	if meta != nil {
		total = meta.TotalCount
	}
	return approvals, total, nil
}

// Get returns one approval by ID.
func (s *ApprovalService) Get(ctx context.Context, id uuid.UUID) (*Approval, error) {
	var approval Approval
	if _, err := s.client.get(ctx, "get approval", fmt.Sprintf("/api/v1/approvals/%s", id), nil, &approval); err != nil {
		return nil, err
	}
	return &approval, nil
}

// Respond records the operator's decision on a pending approval. Responding
// to an already-resolved approval is a conflict.
func (s *ApprovalService) Respond(ctx context.Context, id uuid.UUID, decision ApprovalDecision) (*Approval, error) {
	var approval Approval
	path := fmt.Sprintf("/api/v1/approvals/%s/respond", id)
	if err := s.client.post(ctx, "respond approval", path, decision, &approval); err != nil {
		return nil, err
	}
	return &approval, nil
}
