package agentlens

import (
	"context"
	"fmt"

	"github.com/google/uuid"
)

// ProviderService handles LLM provider configuration operations.
type ProviderService struct {
	client *Client
}

// ProviderListParams filters and paginates provider listings.
type ProviderListParams struct {
	// Kind filters to one provider kind when set.
	Kind ProviderKind

	ListOptions
}

// ProviderCreateParams holds the fields for creating a provider config.
type ProviderCreateParams struct {
	Name         string       `json:"name"`
	Kind         ProviderKind `json:"kind"`
	BaseURL      string       `json:"base_url,omitempty"`
	DefaultModel string       `json:"default_model,omitempty"`
	APIKey       string       `json:"api_key"`
}

// ProviderUpdateParams holds the fields for updating a provider config.
// Nil fields are left unchanged.
type ProviderUpdateParams struct {
	Name         *string `json:"name,omitempty"`
	BaseURL      *string `json:"base_url,omitempty"`
	DefaultModel *string `json:"default_model,omitempty"`
	APIKey       *string `json:"api_key,omitempty"`
}

// List returns provider configs with the total count across all pages.
func (s *ProviderService) List(ctx context.Context, params ProviderListParams) ([]*ProviderConfig, int, error) {
	q := params.query()
	if params.Kind != "" {
		q.Set("kind", params.Kind.String())
	}

	var providers []*ProviderConfig
	meta, err := s.client.get(ctx, "list providers", "/api/v1/providers", q, &providers)
	if err != nil {
		return nil, 0, err
	}
	total := len(providers)
	if meta != nil {
		total = meta.TotalCount
	}
	return providers, total, nil
}

// Get returns one provider config by ID.
func (s *ProviderService) Get(ctx context.Context, id uuid.UUID) (*ProviderConfig, error) {
	var provider ProviderConfig
	if _, err := s.client.get(ctx, "get provider", fmt.Sprintf("/api/v1/providers/%s", id), nil, &provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

// Create registers a new provider config.
func (s *ProviderService) Create(ctx context.Context, params ProviderCreateParams) (*ProviderConfig, error) {
	var provider ProviderConfig
	if err := s.client.post(ctx, "create provider", "/api/v1/providers", params, &provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

// Update modifies an existing provider config.
func (s *ProviderService) Update(ctx context.Context, id uuid.UUID, params ProviderUpdateParams) (*ProviderConfig, error) {
	var provider ProviderConfig
	if err := s.client.patch(ctx, "update provider", fmt.Sprintf("/api/v1/providers/%s", id), params, &provider); err != nil {
		return nil, err
	}
	return &provider, nil
}

// Delete removes a provider config.
func (s *ProviderService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.client.delete(ctx, "delete provider", fmt.Sprintf("/api/v1/providers/%s", id))
}
