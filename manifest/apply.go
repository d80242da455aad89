package manifest

import (
	"context"
	"encoding/json"
	"fmt"
	"maps"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens"
)

// Action describes what Apply did with one manifest.
type Action string

const (
	ActionCreated   Action = "created"
	ActionUpdated   Action = "updated"
	ActionUnchanged Action = "unchanged"
)

// Result is the outcome of applying one manifest.
type Result struct {
	Kind   ManifestKind
	Name   string
	ID     uuid.UUID
	Action Action
}

// applyOrder ranks kinds so referenced resources are applied before their
// dependents: agents name providers and MCP servers.
var applyOrder = map[ManifestKind]int{
	KindProvider:  0,
	KindMCPServer: 1,
	KindAgent:     2,
}

// Apply creates or updates every manifest by name. All manifests are
// validated before the first request; after that they are applied
// sequentially in dependency order, and an apply error returns the results
// accumulated so far alongside it.
//
// Providers carry a credential the API never returns, so applying an
// existing provider always re-asserts it and reports ActionUpdated. MCP
// servers have no update operation; a server that drifted from its manifest
// is an error.
func Apply(ctx context.Context, client *agentlens.Client, manifests []Manifest) ([]Result, error) {
	if err := ValidateAll(manifests); err != nil {
		return nil, err
	}

	st, err := loadState(ctx, client)
	if err != nil {
		return nil, err
	}

	ordered := make([]Manifest, len(manifests))
	copy(ordered, manifests)
	sort.SliceStable(ordered, func(i, j int) bool {
		return applyOrder[ordered[i].Kind] < applyOrder[ordered[j].Kind]
	})

	var results []Result
	for i := range ordered {
		m := &ordered[i]

		var (
			res *Result
			err error
		)
		switch m.Kind {
		case KindProvider:
			res, err = applyProvider(ctx, client, st, m)
		case KindMCPServer:
			res, err = applyMCPServer(ctx, client, st, m)
		case KindAgent:
			res, err = applyAgent(ctx, client, st, m)
		}
		if err != nil {
			return results, fmt.Errorf("manifest: apply %s %q: %w", m.Kind, m.Name, err)
		}
		results = append(results, *res)
	}

	return results, nil
}

// state is the named resources already on the server, fetched once before
// applying and updated as resources are created.
type state struct {
	providers map[string]*agentlens.ProviderConfig
	servers   map[string]*agentlens.MCPServer
	agents    map[string]*agentlens.Agent
}

func loadState(ctx context.Context, client *agentlens.Client) (*state, error) {
	opts := agentlens.ListOptions{Limit: agentlens.MaxListLimit}

	providers, _, err := client.Providers.List(ctx, agentlens.ProviderListParams{ListOptions: opts})
	if err != nil {
		return nil, fmt.Errorf("manifest: list providers: %w", err)
	}
	servers, _, err := client.MCP.List(ctx, agentlens.MCPServerListParams{ListOptions: opts})
	if err != nil {
		return nil, fmt.Errorf("manifest: list mcp servers: %w", err)
	}
	agents, _, err := client.Agents.List(ctx, agentlens.AgentListParams{ListOptions: opts})
	if err != nil {
		return nil, fmt.Errorf("manifest: list agents: %w", err)
	}

	st := &state{
		providers: make(map[string]*agentlens.ProviderConfig, len(providers)),
		servers:   make(map[string]*agentlens.MCPServer, len(servers)),
		agents:    make(map[string]*agentlens.Agent, len(agents)),
	}
	for _, p := range providers {
		st.providers[p.Name] = p
	}
	for _, s := range servers {
		st.servers[s.Name] = s
	}
	for _, a := range agents {
		st.agents[a.Name] = a
	}
	return st, nil
}

func applyProvider(ctx context.Context, client *agentlens.Client, st *state, m *Manifest) (*Result, error) {
	spec, err := m.ProviderSpec()
	if err != nil {
		return nil, err
	}
	key, err := spec.apiKey()
	if err != nil {
		return nil, err
	}

	existing := st.providers[m.Name]
	if existing == nil {
		created, err := client.Providers.Create(ctx, agentlens.ProviderCreateParams{
			Name:         m.Name,
			Kind:         agentlens.ProviderKind(spec.Kind),
			BaseURL:      spec.BaseURL,
			DefaultModel: spec.DefaultModel,
			APIKey:       key,
		})
		if err != nil {
			return nil, err
		}
		st.providers[m.Name] = created
		return &Result{Kind: m.Kind, Name: m.Name, ID: created.ID, Action: ActionCreated}, nil
	}

	if agentlens.ProviderKind(spec.Kind) != existing.Kind {
		return nil, fmt.Errorf("provider kind is immutable (have %s, manifest says %s)", existing.Kind, spec.Kind)
	}

	params := agentlens.ProviderUpdateParams{APIKey: agentlens.Ptr(key)}
	if spec.BaseURL != existing.BaseURL {
		params.BaseURL = agentlens.Ptr(spec.BaseURL)
	}
	if spec.DefaultModel != existing.DefaultModel {
		params.DefaultModel = agentlens.Ptr(spec.DefaultModel)
	}

	updated, err := client.Providers.Update(ctx, existing.ID, params)
	if err != nil {
		return nil, err
	}
	st.providers[m.Name] = updated
	return &Result{Kind: m.Kind, Name: m.Name, ID: updated.ID, Action: ActionUpdated}, nil
}

func applyMCPServer(ctx context.Context, client *agentlens.Client, st *state, m *Manifest) (*Result, error) {
	spec, err := m.MCPServerSpec()
	if err != nil {
		return nil, err
	}

	existing := st.servers[m.Name]
	if existing == nil {
		created, err := client.MCP.Create(ctx, agentlens.MCPServerCreateParams{
			Name:      m.Name,
			Transport: agentlens.MCPTransport(spec.Transport),
			Command:   spec.Command,
			URL:       spec.URL,
			Env:       spec.Env,
		})
		if err != nil {
			return nil, err
		}
		st.servers[m.Name] = created
		return &Result{Kind: m.Kind, Name: m.Name, ID: created.ID, Action: ActionCreated}, nil
	}

	drifted := spec.Transport != string(existing.Transport) ||
		spec.Command != existing.Command ||
		spec.URL != existing.URL ||
		!maps.Equal(spec.Env, existing.Env)
	if drifted {
		return nil, fmt.Errorf("server differs from its manifest and has no update operation; delete it and apply again")
	}

	return &Result{Kind: m.Kind, Name: m.Name, ID: existing.ID, Action: ActionUnchanged}, nil
}

func applyAgent(ctx context.Context, client *agentlens.Client, st *state, m *Manifest) (*Result, error) {
	spec, err := m.AgentSpec()
	if err != nil {
		return nil, err
	}

	provider := st.providers[spec.Provider]
	if provider == nil {
		return nil, fmt.Errorf("references unknown provider %q", spec.Provider)
	}

	serverIDs := make([]uuid.UUID, 0, len(spec.MCPServers))
	for _, name := range spec.MCPServers {
		server := st.servers[name]
		if server == nil {
			return nil, fmt.Errorf("references unknown mcp server %q", name)
		}
		serverIDs = append(serverIDs, server.ID)
	}

	metadata, err := normalizeMetadata(spec.Metadata)
	if err != nil {
		return nil, err
	}

	existing := st.agents[m.Name]
	if existing == nil {
		created, err := client.Agents.Create(ctx, agentlens.AgentCreateParams{
			Name:             m.Name,
			Description:      spec.Description,
			SystemPrompt:     spec.SystemPrompt,
			Model:            spec.Model,
			ProviderConfigID: provider.ID,
			MCPServerIDs:     serverIDs,
			MaxIterations:    spec.MaxIterations,
			Metadata:         metadata,
		})
		if err != nil {
			return nil, err
		}
		st.agents[m.Name] = created
		return &Result{Kind: m.Kind, Name: m.Name, ID: created.ID, Action: ActionCreated}, nil
	}

	var params agentlens.AgentUpdateParams
	changed := false
	if spec.Description != existing.Description {
		params.Description = agentlens.Ptr(spec.Description)
		changed = true
	}
	if spec.SystemPrompt != existing.SystemPrompt {
		params.SystemPrompt = agentlens.Ptr(spec.SystemPrompt)
		changed = true
	}
	if spec.Model != existing.Model {
		params.Model = agentlens.Ptr(spec.Model)
		changed = true
	}
	if provider.ID != existing.ProviderConfigID {
		params.ProviderConfigID = agentlens.Ptr(provider.ID)
		changed = true
	}
	if !equalIDSets(serverIDs, existing.MCPServerIDs) {
		params.MCPServerIDs = serverIDs
		changed = true
	}
	if spec.MaxIterations != existing.MaxIterations {
		params.MaxIterations = agentlens.Ptr(spec.MaxIterations)
		changed = true
	}
	if len(metadata) > 0 && !reflect.DeepEqual(metadata, existing.Metadata) {
		params.Metadata = metadata
		changed = true
	}

	if !changed {
		return &Result{Kind: m.Kind, Name: m.Name, ID: existing.ID, Action: ActionUnchanged}, nil
	}

	updated, err := client.Agents.Update(ctx, existing.ID, params)
	if err != nil {
		return nil, err
	}
	st.agents[m.Name] = updated
	return &Result{Kind: m.Kind, Name: m.Name, ID: updated.ID, Action: ActionUpdated}, nil
}

// normalizeMetadata round-trips metadata through JSON so YAML-decoded
// values compare equal to API-decoded ones (YAML yields int where JSON
// yields float64).
func normalizeMetadata(metadata map[string]any) (map[string]any, error) {
	if len(metadata) == 0 {
		return nil, nil
	}

	raw, err := json.Marshal(metadata)
	if err != nil {
		return nil, fmt.Errorf("metadata is not JSON-compatible: %w", err)
	}
	var normalized map[string]any
	if err := json.Unmarshal(raw, &normalized); err != nil {
		return nil, fmt.Errorf("metadata is not JSON-compatible: %w", err)
	}
	return normalized, nil
}

// equalIDSets compares two ID lists ignoring order.
func equalIDSets(a, b []uuid.UUID) bool {
	if len(a) != len(b) {
		return false
	}
	set := make(map[uuid.UUID]struct{}, len(a))
	for _, id := range a {
		set[id] = struct{}{}
	}
	for _, id := range b {
		if _, ok := set[id]; !ok {
			return false
		}
	}
	return true
}
