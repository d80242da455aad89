package agentlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// AgentService handles agent definition operations.
type AgentService struct {
	client *Client
}

// AgentListParams filters and paginates agent listings.
type AgentListParams struct {
	ListOptions
}

// AgentCreateParams holds the fields for creating an agent.
type AgentCreateParams struct {
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	SystemPrompt     string         `json:"system_prompt"`
	Model            string         `json:"model"`
	ProviderConfigID uuid.UUID      `json:"provider_config_id"`
	MCPServerIDs     []uuid.UUID    `json:"mcp_server_ids,omitempty"`
	MaxIterations    int            `json:"max_iterations,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// AgentUpdateParams holds the fields for updating an agent. Nil fields are
// left unchanged.
type AgentUpdateParams struct {
	Name             *string        `json:"name,omitempty"`
	Description      *string        `json:"description,omitempty"`
	SystemPrompt     *string        `json:"system_prompt,omitempty"`
	Model            *string        `json:"model,omitempty"`
	ProviderConfigID *uuid.UUID     `json:"provider_config_id,omitempty"`
	MCPServerIDs     []uuid.UUID    `json:"mcp_server_ids,omitempty"`
	MaxIterations    *int           `json:"max_iterations,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
}

// List returns agents with the total count across all pages.
func (s *AgentService) List(ctx context.Context, params AgentListParams) ([]*Agent, int, error) {
	var agents []*Agent
	meta, err := s.client.get(ctx, "list agents", "/api/v1/agents", params.query(), &agents)
	if err != nil {
		return nil, 0, err
	}
	total := len(agents)
	if meta != nil {
		total = meta.TotalCount
	}
	return agents, total, nil
}

// Get returns one agent by ID.
func (s *AgentService) Get(ctx context.Context, id uuid.UUID) (*Agent, error) {
	var agent Agent
	if _, err := s.client.get(ctx, "get agent", fmt.Sprintf("/api/v1/agents/%s", id), nil, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Create registers a new agent definition.
func (s *AgentService) Create(ctx context.Context, params AgentCreateParams) (*Agent, error) {
	var agent Agent
	if err := s.client.post(ctx, "create agent", "/api/v1/agents", params, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Update modifies an existing agent definition.
func (s *AgentService) Update(ctx context.Context, id uuid.UUID, params AgentUpdateParams) (*Agent, error) {
	var agent Agent
	if err := s.client.patch(ctx, "update agent", fmt.Sprintf("/api/v1/agents/%s", id), params, &agent); err != nil {
		return nil, err
	}
	return &agent, nil
}

// Delete removes an agent definition.
func (s *AgentService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.delete(ctx, "delete agent", fmt.Sprintf("/api/v1/agents/%s", id))
}
