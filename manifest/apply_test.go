package manifest

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/agentlens/agentlens"
)

// fakeAPI is an in-memory platform API speaking the response envelope.
type fakeAPI struct {
	mu        sync.Mutex
	providers []*agentlens.ProviderConfig
	servers   []*agentlens.MCPServer
	agents    []*agentlens.Agent

	requests int
	creates  int
	updates  int

	lastProviderCreate *agentlens.ProviderCreateParams
	lastAgentCreate    *agentlens.AgentCreateParams
	lastAgentPatch     map[string]any
}

func newFakeAPI(t *testing.T) (*fakeAPI, *agentlens.Client) {
	t.Helper()

	api := &fakeAPI{}
	srv := httptest.NewServer(api)
	t.Cleanup(srv.Close)

	client, err := agentlens.NewClient(agentlens.Config{BaseURL: srv.URL, Token: "test-token"})
	if err != nil {
		t.Fatalf("NewClient() error = %v", err)
	}
	return api, client
}

func (f *fakeAPI) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests++

	path := strings.TrimPrefix(r.URL.Path, "/api/v1/")
	switch {
	case path == "providers" && r.Method == http.MethodGet:
		writeList(w, f.providers, len(f.providers))
	case path == "providers" && r.Method == http.MethodPost:
		var params agentlens.ProviderCreateParams
		decodeBody(r, &params)
		f.creates++
		f.lastProviderCreate = &params
		p := &agentlens.ProviderConfig{
			ID: uuid.New(), Name: params.Name, Kind: params.Kind,
			BaseURL: params.BaseURL, DefaultModel: params.DefaultModel,
		}
		f.providers = append(f.providers, p)
		writeItem(w, p)
	case strings.HasPrefix(path, "providers/") && r.Method == http.MethodPatch:
		var params agentlens.ProviderUpdateParams
		decodeBody(r, &params)
		f.updates++
		id := strings.TrimPrefix(path, "providers/")
		for _, p := range f.providers {
			if p.ID.String() == id {
				if params.BaseURL != nil {
					p.BaseURL = *params.BaseURL
				}
				if params.DefaultModel != nil {
					p.DefaultModel = *params.DefaultModel
				}
				writeItem(w, p)
				return
			}
		}
		writeNotFound(w)

	case path == "mcp/servers" && r.Method == http.MethodGet:
		writeList(w, f.servers, len(f.servers))
	case path == "mcp/servers" && r.Method == http.MethodPost:
		var params agentlens.MCPServerCreateParams
		decodeBody(r, &params)
		f.creates++
		s := &agentlens.MCPServer{
			ID: uuid.New(), Name: params.Name, Transport: params.Transport,
			Command: params.Command, URL: params.URL, Env: params.Env,
		}
		f.servers = append(f.servers, s)
		writeItem(w, s)

	case path == "agents" && r.Method == http.MethodGet:
		writeList(w, f.agents, len(f.agents))
	case path == "agents" && r.Method == http.MethodPost:
		var params agentlens.AgentCreateParams
		decodeBody(r, &params)
		f.creates++
		f.lastAgentCreate = &params
		a := &agentlens.Agent{
			ID: uuid.New(), Name: params.Name, Description: params.Description,
			SystemPrompt: params.SystemPrompt, Model: params.Model,
			ProviderConfigID: params.ProviderConfigID, MCPServerIDs: params.MCPServerIDs,
			MaxIterations: params.MaxIterations, Metadata: params.Metadata,
		}
		f.agents = append(f.agents, a)
		writeItem(w, a)
	case strings.HasPrefix(path, "agents/") && r.Method == http.MethodPatch:
		var patch map[string]any
		decodeBody(r, &patch)
		f.updates++
		f.lastAgentPatch = patch
		id := strings.TrimPrefix(path, "agents/")
		for _, a := range f.agents {
			if a.ID.String() == id {
				if v, ok := patch["model"].(string); ok {
					a.Model = v
				}
				if v, ok := patch["system_prompt"].(string); ok {
					a.SystemPrompt = v
				}
				writeItem(w, a)
				return
			}
		}
		writeNotFound(w)

	default:
		writeNotFound(w)
	}
}

func decodeBody(r *http.Request, out any) {
	_ = json.NewDecoder(r.Body).Decode(out)
}

func writeList(w http.ResponseWriter, data any, total int) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{
		"data": data,
		"meta": map[string]any{"total_count": total},
	})
}

func writeItem(w http.ResponseWriter, data any) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]any{"data": data})
}

func writeNotFound(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(map[string]any{
		"error": map[string]any{"code": "not_found", "message": "not found"},
	})
}

func TestApply_CreatesInDependencyOrder(t *testing.T) {
	t.Setenv("APPLY_TEST_API_KEY", "sk-test-123")
	api, client := newFakeAPI(t)

	// The agent document comes first on purpose; Apply must create its
	// provider and server before it.
	doc := `kind: agent
name: triage
spec:
  system_prompt: You triage incidents.
  model: claude-sonnet-4-5
  provider: anthropic-prod
  mcp_servers: [search]
---
kind: provider
name: anthropic-prod
spec:
  kind: anthropic
  api_key_env: APPLY_TEST_API_KEY
---
kind: mcpserver
name: search
spec:
  transport: stdio
  command: search-server --stdio
`
	manifests, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	results, err := Apply(context.Background(), client, manifests)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(results) != 3 {
		t.Fatalf("got %d results, want 3", len(results))
	}

	wantOrder := []ManifestKind{KindProvider, KindMCPServer, KindAgent}
	for i, res := range results {
		if res.Kind != wantOrder[i] {
			t.Errorf("result %d kind = %s, want %s", i, res.Kind, wantOrder[i])
		}
		if res.Action != ActionCreated {
			t.Errorf("result %d action = %s, want created", i, res.Action)
		}
		if res.ID == uuid.Nil {
			t.Errorf("result %d has a zero id", i)
		}
	}

	if api.lastProviderCreate == nil || api.lastProviderCreate.APIKey != "sk-test-123" {
		t.Error("provider create did not carry the key from the environment")
	}
	if api.lastAgentCreate == nil {
		t.Fatal("agent was never created")
	}
	if api.lastAgentCreate.ProviderConfigID != api.providers[0].ID {
		t.Error("agent create did not resolve the provider reference")
	}
	if len(api.lastAgentCreate.MCPServerIDs) != 1 || api.lastAgentCreate.MCPServerIDs[0] != api.servers[0].ID {
		t.Error("agent create did not resolve the mcp server reference")
	}
}

func TestApply_UpdatesChangedAgent(t *testing.T) {
	api, client := newFakeAPI(t)

	provider := &agentlens.ProviderConfig{ID: uuid.New(), Name: "anthropic-prod", Kind: agentlens.ProviderAnthropic}
	api.providers = append(api.providers, provider)
	api.agents = append(api.agents, &agentlens.Agent{
		ID: uuid.New(), Name: "triage",
		SystemPrompt: "You triage incidents.", Model: "claude-3-5-sonnet-latest",
		ProviderConfigID: provider.ID,
	})

	doc := `kind: agent
name: triage
spec:
  system_prompt: You triage incidents.
  model: claude-sonnet-4-5
  provider: anthropic-prod
`
	manifests, _ := Decode(strings.NewReader(doc))
	results, err := Apply(context.Background(), client, manifests)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(results) != 1 || results[0].Action != ActionUpdated {
		t.Fatalf("results = %+v, want one updated", results)
	}

	if _, ok := api.lastAgentPatch["model"]; !ok {
		t.Error("patch does not carry the changed model")
	}
	if _, ok := api.lastAgentPatch["system_prompt"]; ok {
		t.Error("patch carries system_prompt although it did not change")
	}
	if api.agents[0].Model != "claude-sonnet-4-5" {
		t.Errorf("agent model = %q after apply", api.agents[0].Model)
	}
}

func TestApply_UnchangedAgent(t *testing.T) {
	api, client := newFakeAPI(t)

	provider := &agentlens.ProviderConfig{ID: uuid.New(), Name: "anthropic-prod", Kind: agentlens.ProviderAnthropic}
	api.providers = append(api.providers, provider)
	api.agents = append(api.agents, &agentlens.Agent{
		ID: uuid.New(), Name: "triage",
		SystemPrompt: "You triage incidents.", Model: "claude-sonnet-4-5",
		ProviderConfigID: provider.ID,
	})

	doc := `kind: agent
name: triage
spec:
  system_prompt: You triage incidents.
  model: claude-sonnet-4-5
  provider: anthropic-prod
`
	manifests, _ := Decode(strings.NewReader(doc))
	results, err := Apply(context.Background(), client, manifests)
	if err != nil {
		t.Fatalf("Apply() error = %v", err)
	}
	if len(results) != 1 || results[0].Action != ActionUnchanged {
		t.Fatalf("results = %+v, want one unchanged", results)
	}
	if api.updates != 0 {
		t.Errorf("%d updates sent for an unchanged agent", api.updates)
	}
}

func TestApply_UnknownProviderReference(t *testing.T) {
	api, client := newFakeAPI(t)

	doc := `kind: agent
name: triage
spec:
  system_prompt: s
  model: m
  provider: nonexistent
`
	manifests, _ := Decode(strings.NewReader(doc))
	_, err := Apply(context.Background(), client, manifests)
	if err == nil {
		t.Fatal("Apply() = nil for an unresolvable reference")
	}
	if !strings.Contains(err.Error(), `unknown provider "nonexistent"`) {
		t.Errorf("error = %q", err)
	}
	if api.creates != 0 {
		t.Errorf("%d resources created despite the failure", api.creates)
	}
}

func TestApply_MCPServerDrift(t *testing.T) {
	api, client := newFakeAPI(t)
	api.servers = append(api.servers, &agentlens.MCPServer{
		ID: uuid.New(), Name: "search",
		Transport: agentlens.MCPTransportSSE, URL: "https://old.example.com/sse",
	})

	doc := `kind: mcpserver
name: search
spec:
  transport: sse
  url: https://new.example.com/sse
`
	manifests, _ := Decode(strings.NewReader(doc))
	_, err := Apply(context.Background(), client, manifests)
	if err == nil {
		t.Fatal("Apply() = nil for a drifted mcp server")
	}
	if !strings.Contains(err.Error(), "no update operation") {
		t.Errorf("error = %q", err)
	}
}

func TestApply_ValidationStopsBeforeNetwork(t *testing.T) {
	api, client := newFakeAPI(t)

	doc := `kind: agent
name: broken
spec:
  model: m
`
	manifests, _ := Decode(strings.NewReader(doc))
	if _, err := Apply(context.Background(), client, manifests); err == nil {
		t.Fatal("Apply() = nil for an invalid manifest")
	}
	if api.requests != 0 {
		t.Errorf("%d requests sent before validation failed", api.requests)
	}
}

func TestApply_MissingCredentialEnv(t *testing.T) {
	api, client := newFakeAPI(t)

	doc := `kind: provider
name: anthropic-prod
spec:
  kind: anthropic
  api_key_env: APPLY_TEST_UNSET_KEY
`
	manifests, _ := Decode(strings.NewReader(doc))
	_, err := Apply(context.Background(), client, manifests)
	if err == nil {
		t.Fatal("Apply() = nil with an unset credential variable")
	}
	if !strings.Contains(err.Error(), "APPLY_TEST_UNSET_KEY is not set") {
		t.Errorf("error = %q", err)
	}
	if api.creates != 0 {
		t.Errorf("%d resources created despite the failure", api.creates)
	}
}
