package agentlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens/stream"
)

// TaskService handles task operations and task event streams.
type TaskService struct {
	client *Client
}

// TaskListParams filters and paginates task listings.
type TaskListParams struct {
	// Status filters to one lifecycle state when set.
	Status TaskStatus

	// AgentID filters to tasks of one agent when set.
	AgentID *uuid.UUID

	ListOptions
}

// TaskCreateParams holds the fields for submitting a task.
type TaskCreateParams struct {
	AgentID        uuid.UUID `json:"agent_id"`
	Prompt         string    `json:"prompt"`
	BudgetLimitUSD float64   `json:"budget_limit_usd,omitempty"`
}

// List returns tasks with the total count across all pages.
func (s *TaskService) List(ctx context.Context, params TaskListParams) ([]*Task, int, error) {
	q := params.query()
	if params.Status != "" {
		q.Set("status", params.Status.String())
	}
	if params.AgentID != nil {
		q.Set("agent_id", params.AgentID.String())
	}

	var tasks []*Task
	meta, err := s.client.get(ctx, "list tasks", "/api/v1/tasks", q, &tasks)
	if err != nil {
		return nil, 0, err
	}
	total := len(tasks)
	if meta != nil {
		total = meta.TotalCount
	}
	return tasks, total, nil
}

// Get returns one task by ID.
func (s *TaskService) Get(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	if _, err := s.client.get(ctx, "get task", fmt.Sprintf("/api/v1/tasks/%s", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Create submits a new task for an agent.
func (s *TaskService) Create(ctx context.Context, params TaskCreateParams) (*Task, error) {
	var task Task
	if err := s.client.post(ctx, "create task", "/api/v1/tasks", params, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Pause asks the runner to pause a running task.
func (s *TaskService) Pause(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	if err := s.client.post(ctx, "pause task", fmt.Sprintf("/api/v1/tasks/%s/pause", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Resume resumes a paused task.
func (s *TaskService) Resume(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	if err := s.client.post(ctx, "resume task", fmt.Sprintf("/api/v1/tasks/%s/resume", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// Cancel cancels a task. Cancelling a terminal task is a conflict.
func (s *TaskService) Cancel(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	if err := s.client.post(ctx, "cancel task", fmt.Sprintf("/api/v1/tasks/%s/cancel", id), nil, &task); err != nil {
		return nil, err
	}
	return &task, nil
}

// EventsURL returns the SSE target for a task's event stream.
func (s *TaskService) EventsURL(id uuid.UUID) string {
	return s.client.endpoint(fmt.Sprintf("/api/v1/tasks/%s/events", id), nil)
}

// Watch connects a stream client to the task's event stream, carrying the
// API credentials in the stream headers. The caller owns the returned client
// and releases it with Disconnect.
func (s *TaskService) Watch(ctx context.Context, id uuid.UUID, cfg stream.Config) (*stream.Client, error) {
	if s.client.tokens != nil {
		token, err := s.client.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("agentlens: token: %w", err)
		}
		if token != "" {
			// Copy so the caller's header map is not mutated.
			headers := make(map[string]string, len(cfg.Headers)+1)
			for k, v := range cfg.Headers {
				headers[k] = v
			}
			headers["Authorization"] = "Bearer " + token
			cfg.Headers = headers
		}
	}

	sc := stream.NewClient(cfg)
	if err := sc.Connect(ctx, s.EventsURL(id)); err != nil {
		return nil, err
	}
	return sc, nil
}
