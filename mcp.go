package agentlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// MCPService handles MCP server and instance operations.
type MCPService struct {
	client *Client
}

// MCPServerListParams filters and paginates MCP server listings.
type MCPServerListParams struct {
	ListOptions
}

// MCPServerCreateParams holds the fields for registering an MCP server.
type MCPServerCreateParams struct {
	Name      string            `json:"name"`
	Transport MCPTransport      `json:"transport"`
	Command   string            `json:"command,omitempty"`
	URL       string            `json:"url,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
}

// List returns MCP server definitions with the total count.
func (s *MCPService) List(ctx context.Context, params MCPServerListParams) ([]*MCPServer, int, error) {
	var servers []*MCPServer
	meta, err := s.client.get(ctx, "list mcp servers", "/api/v1/mcp/servers", params.query(), &servers)
	if err != nil {
		return nil, 0, err
	}
	total := len(servers)
	if meta != nil {
		total = meta.TotalCount
	}
	return servers, total, nil
}

// Get returns one MCP server definition by ID.
func (s *MCPService) Get(ctx context.Context, id uuid.UUID) (*MCPServer, error) {
	var server MCPServer
	if _, err := s.client.get(ctx, "get mcp server", fmt.Sprintf("/api/v1/mcp/servers/%s", id), nil, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

// Create registers a new MCP server.
func (s *MCPService) Create(ctx context.Context, params MCPServerCreateParams) (*MCPServer, error) {
	var server MCPServer
	if err := s.client.post(ctx, "create mcp server", "/api/v1/mcp/servers", params, &server); err != nil {
		return nil, err
	}
	return &server, nil
}

// Delete removes an MCP server definition.
func (s *MCPService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.delete(ctx, "delete mcp server", fmt.Sprintf("/api/v1/mcp/servers/%s", id))
}

// ListInstances returns the live instances for a server, including the tools
// each one exposes.
func (s *MCPService) ListInstances(ctx context.Context, serverID uuid.UUID) ([]*MCPInstance, error) {
	var instances []*MCPInstance
	path := fmt.Sprintf("/api/v1/mcp/servers/%s/instances", serverID)
	if _, err := s.client.get(ctx, "list mcp instances", path, nil, &instances); err != nil {
		return nil, err
	}
	return instances, nil
}

// GetInstance returns one live instance by ID.
func (s *MCPService) GetInstance(ctx context.Context, id uuid.UUID) (*MCPInstance, error) {
	var instance MCPInstance
	if _, err := s.client.get(ctx, "get mcp instance", fmt.Sprintf("/api/v1/mcp/instances/%s", id), nil, &instance); err != nil {
		return nil, err
	}
	return &instance, nil
}
