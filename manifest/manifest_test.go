package manifest

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

const sampleManifests = `kind: provider
name: anthropic-prod
spec:
  kind: anthropic
  default_model: claude-sonnet-4-5
  api_key_env: ANTHROPIC_API_KEY
---
kind: mcpserver
name: search
spec:
  transport: stdio
  command: search-server --stdio
  env:
    SEARCH_INDEX: prod
---
kind: agent
name: triage
spec:
  description: Triage incoming incidents
  system_prompt: You triage incoming incidents.
  model: claude-sonnet-4-5
  provider: anthropic-prod
  mcp_servers: [search]
  max_iterations: 20
`

// mustDecodeOne decodes a single-document manifest for validation tests.
func mustDecodeOne(t *testing.T, doc string) *Manifest {
	t.Helper()
	manifests, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(manifests) != 1 {
		t.Fatalf("got %d documents, want 1", len(manifests))
	}
	return &manifests[0]
}

func TestDecode_MultiDocument(t *testing.T) {
	manifests, err := Decode(strings.NewReader(sampleManifests))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if len(manifests) != 3 {
		t.Fatalf("got %d documents, want 3", len(manifests))
	}

	wantKinds := []ManifestKind{KindProvider, KindMCPServer, KindAgent}
	wantNames := []string{"anthropic-prod", "search", "triage"}
	for i, m := range manifests {
		if m.Kind != wantKinds[i] {
			t.Errorf("document %d kind = %q, want %q", i, m.Kind, wantKinds[i])
		}
		if m.Name != wantNames[i] {
			t.Errorf("document %d name = %q, want %q", i, m.Name, wantNames[i])
		}
	}

	spec, err := manifests[2].AgentSpec()
	if err != nil {
		t.Fatalf("AgentSpec() error = %v", err)
	}
	if spec.Provider != "anthropic-prod" {
		t.Errorf("Provider = %q", spec.Provider)
	}
	if len(spec.MCPServers) != 1 || spec.MCPServers[0] != "search" {
		t.Errorf("MCPServers = %v", spec.MCPServers)
	}
	if spec.MaxIterations != 20 {
		t.Errorf("MaxIterations = %d", spec.MaxIterations)
	}

	mcpSpec, err := manifests[1].MCPServerSpec()
	if err != nil {
		t.Fatalf("MCPServerSpec() error = %v", err)
	}
	if mcpSpec.Env["SEARCH_INDEX"] != "prod" {
		t.Errorf("Env = %v", mcpSpec.Env)
	}
}

func TestDecode_UnknownTopLevelField(t *testing.T) {
	_, err := Decode(strings.NewReader("kind: agent\nname: x\nbogus: 1\n"))
	if err == nil {
		t.Fatal("Decode() accepted an unknown field")
	}
	if !strings.Contains(err.Error(), "bogus") {
		t.Errorf("error %q does not name the unknown field", err)
	}
}

func TestDecode_Empty(t *testing.T) {
	_, err := Decode(strings.NewReader(""))
	if !errors.Is(err, ErrNoDocuments) {
		t.Errorf("Decode(\"\") error = %v, want ErrNoDocuments", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "resources.yaml")
	if err := os.WriteFile(path, []byte(sampleManifests), 0o644); err != nil {
		t.Fatal(err)
	}

	manifests, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if len(manifests) != 3 {
		t.Errorf("got %d documents, want 3", len(manifests))
	}

	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("Load() of a missing file did not fail")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name: "valid agent",
			doc: `kind: agent
name: triage
spec:
  system_prompt: You triage.
  model: claude-sonnet-4-5
  provider: anthropic-prod
`,
		},
		{
			name:    "missing name",
			doc:     "kind: agent\nspec:\n  model: m\n",
			wantErr: "name is required",
		},
		{
			name:    "missing kind",
			doc:     "name: x\nspec:\n  model: m\n",
			wantErr: "kind is required",
		},
		{
			name:    "unknown kind",
			doc:     "kind: deployment\nname: x\nspec:\n  a: b\n",
			wantErr: `unknown kind "deployment"`,
		},
		{
			name:    "agent missing prompt",
			doc:     "kind: agent\nname: x\nspec:\n  model: m\n  provider: p\n",
			wantErr: "system_prompt is required",
		},
		{
			name:    "agent missing provider",
			doc:     "kind: agent\nname: x\nspec:\n  system_prompt: s\n  model: m\n",
			wantErr: "provider is required",
		},
		{
			name:    "agent missing spec",
			doc:     "kind: agent\nname: x\n",
			wantErr: "spec is required",
		},
		{
			name:    "agent unknown spec field",
			doc:     "kind: agent\nname: x\nspec:\n  system_prompt: s\n  model: m\n  provider: p\n  temperature: 0.5\n",
			wantErr: "temperature",
		},
		{
			name:    "provider unknown kind",
			doc:     "kind: provider\nname: x\nspec:\n  kind: cohere\n  api_key: k\n",
			wantErr: `unknown provider kind "cohere"`,
		},
		{
			name:    "provider missing credential",
			doc:     "kind: provider\nname: x\nspec:\n  kind: anthropic\n",
			wantErr: "api_key or api_key_env",
		},
		{
			name:    "provider both credentials",
			doc:     "kind: provider\nname: x\nspec:\n  kind: anthropic\n  api_key: k\n  api_key_env: E\n",
			wantErr: "mutually exclusive",
		},
		{
			name:    "compatible provider without base url",
			doc:     "kind: provider\nname: x\nspec:\n  kind: openai_compatible\n  api_key: k\n",
			wantErr: "base_url is required",
		},
		{
			name:    "mcpserver unknown transport",
			doc:     "kind: mcpserver\nname: x\nspec:\n  transport: grpc\n",
			wantErr: `unknown transport "grpc"`,
		},
		{
			name:    "stdio server without command",
			doc:     "kind: mcpserver\nname: x\nspec:\n  transport: stdio\n",
			wantErr: "command is required",
		},
		{
			name:    "sse server without url",
			doc:     "kind: mcpserver\nname: x\nspec:\n  transport: sse\n",
			wantErr: "url is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m := mustDecodeOne(t, tt.doc)
			err := m.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() error = %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateAll(t *testing.T) {
	manifests, err := Decode(strings.NewReader(sampleManifests))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if err := ValidateAll(manifests); err != nil {
		t.Errorf("ValidateAll() error = %v", err)
	}

	if err := ValidateAll(nil); !errors.Is(err, ErrNoDocuments) {
		t.Errorf("ValidateAll(nil) = %v, want ErrNoDocuments", err)
	}
}

func TestValidateAll_ReportsEveryProblem(t *testing.T) {
	doc := `kind: agent
name: a
spec:
  model: m
  provider: p
---
kind: mcpserver
name: s
spec:
  transport: stdio
  command: run
---
kind: mcpserver
name: s
spec:
  transport: stdio
  command: run
`
	manifests, err := Decode(strings.NewReader(doc))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}

	err = ValidateAll(manifests)
	if err == nil {
		t.Fatal("ValidateAll() = nil for invalid input")
	}
	msg := err.Error()
	if !strings.Contains(msg, "system_prompt is required") {
		t.Errorf("missing agent error in %q", msg)
	}
	if !strings.Contains(msg, `duplicate mcpserver "s"`) {
		t.Errorf("missing duplicate error in %q", msg)
	}
}
