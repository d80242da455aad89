// Package manifest loads declarative resource manifests and applies them
// through the API client.
//
// A manifest file holds one or more YAML documents, each describing an
// agent, a provider config, or an MCP server by name:
//
//	kind: provider
//	name: anthropic-prod
//	spec:
//	  kind: anthropic
//	  default_model: claude-sonnet-4-5
//	  api_key_env: ANTHROPIC_API_KEY
//	---
//	kind: agent
//	name: triage
//	spec:
//	  system_prompt: You triage incoming incidents.
//	  model: claude-sonnet-4-5
//	  provider: anthropic-prod
//
// Apply creates or updates each resource by name, resolving references
// between documents, so a manifest file can be applied repeatedly.
package manifest

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/agentlens/agentlens"
)

// ManifestKind identifies which resource a manifest document describes.
type ManifestKind string

const (
	KindAgent     ManifestKind = "agent"
	KindProvider  ManifestKind = "provider"
	KindMCPServer ManifestKind = "mcpserver"
)

// ErrNoDocuments is returned when a manifest source decodes to nothing.
var ErrNoDocuments = errors.New("manifest contains no documents")

// Manifest is one declarative resource document. The spec block is decoded
// per kind; AgentSpec, ProviderSpec, and MCPServerSpec unpack it.
type Manifest struct {
	Kind ManifestKind `yaml:"kind"`
	Name string       `yaml:"name"`
	Spec yaml.Node    `yaml:"spec"`
}

// AgentSpec is the spec block of an agent manifest. Provider and MCPServers
// reference other resources by name.
type AgentSpec struct {
	Description   string         `yaml:"description"`
	SystemPrompt  string         `yaml:"system_prompt"`
	Model         string         `yaml:"model"`
	Provider      string         `yaml:"provider"`
	MCPServers    []string       `yaml:"mcp_servers"`
	MaxIterations int            `yaml:"max_iterations"`
	Metadata      map[string]any `yaml:"metadata"`
}

// ProviderSpec is the spec block of a provider manifest. The credential
// comes from api_key or, preferably, from the environment variable named by
// api_key_env so manifests stay free of secrets.
type ProviderSpec struct {
	Kind         string `yaml:"kind"`
	BaseURL      string `yaml:"base_url"`
	DefaultModel string `yaml:"default_model"`
	APIKey       string `yaml:"api_key"`
	APIKeyEnv    string `yaml:"api_key_env"`
}

// MCPServerSpec is the spec block of an mcpserver manifest.
type MCPServerSpec struct {
	Transport string            `yaml:"transport"`
	Command   string            `yaml:"command"`
	URL       string            `yaml:"url"`
	Env       map[string]string `yaml:"env"`
}

// Decode reads every document from r. Unknown fields are rejected.
func Decode(r io.Reader) ([]Manifest, error) {
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)

	var manifests []Manifest
	for {
		var m Manifest
		err := dec.Decode(&m)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("manifest: document %d: %w", len(manifests)+1, err)
		}
		manifests = append(manifests, m)
	}

	if len(manifests) == 0 {
		return nil, ErrNoDocuments
	}
	return manifests, nil
}

// Load reads manifests from a file.
func Load(path string) ([]Manifest, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("manifest: open %s: %w", path, err)
	}
	defer f.Close()

	return Decode(f)
}

// decodeSpec re-decodes the spec node into a typed struct with strict field
// checking, which yaml.Node.Decode alone does not enforce.
func decodeSpec(node *yaml.Node, out any) error {
	if node.Kind == 0 {
		return errors.New("spec is required")
	}

	raw, err := yaml.Marshal(node)
	if err != nil {
		return fmt.Errorf("re-encode spec: %w", err)
	}

	dec := yaml.NewDecoder(bytes.NewReader(raw))
	dec.KnownFields(true)
	if err := dec.Decode(out); err != nil {
		return fmt.Errorf("spec: %w", err)
	}
	return nil
}

// AgentSpec decodes the spec block of an agent manifest.
func (m *Manifest) AgentSpec() (*AgentSpec, error) {
	var spec AgentSpec
	if err := decodeSpec(&m.Spec, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// ProviderSpec decodes the spec block of a provider manifest.
func (m *Manifest) ProviderSpec() (*ProviderSpec, error) {
	var spec ProviderSpec
	if err := decodeSpec(&m.Spec, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// MCPServerSpec decodes the spec block of an mcpserver manifest.
func (m *Manifest) MCPServerSpec() (*MCPServerSpec, error) {
	var spec MCPServerSpec
	if err := decodeSpec(&m.Spec, &spec); err != nil {
		return nil, err
	}
	return &spec, nil
}

// Validate checks one manifest without touching the network.
func (m *Manifest) Validate() error {
	if m.Name == "" {
		return errors.New("name is required")
	}

	switch m.Kind {
	case KindAgent:
		spec, err := m.AgentSpec()
		if err != nil {
			return err
		}
		return spec.validate()
	case KindProvider:
		spec, err := m.ProviderSpec()
		if err != nil {
			return err
		}
		return spec.validate()
	case KindMCPServer:
		spec, err := m.MCPServerSpec()
		if err != nil {
			return err
		}
		return spec.validate()
	case "":
		return errors.New("kind is required")
	default:
		return fmt.Errorf("unknown kind %q", m.Kind)
	}
}

// ValidateAll validates every manifest and reports all problems at once.
// Nothing should be applied when it returns an error.
func ValidateAll(manifests []Manifest) error {
	if len(manifests) == 0 {
		return ErrNoDocuments
	}

	var errs []error
	seen := make(map[string]int)
	for i := range manifests {
		m := &manifests[i]
		if err := m.Validate(); err != nil {
			errs = append(errs, fmt.Errorf("document %d: %w", i+1, err))
			continue
		}

		key := string(m.Kind) + "/" + m.Name
		if first, ok := seen[key]; ok {
			errs = append(errs, fmt.Errorf("document %d: duplicate %s %q (first defined in document %d)", i+1, m.Kind, m.Name, first))
			continue
		}
		seen[key] = i + 1
	}

	return errors.Join(errs...)
}

func (s *AgentSpec) validate() error {
	if s.SystemPrompt == "" {
		return errors.New("system_prompt is required")
	}
	if s.Model == "" {
		return errors.New("model is required")
	}
	if s.Provider == "" {
		return errors.New("provider is required")
	}
	if s.MaxIterations < 0 {
		return errors.New("max_iterations must not be negative")
	}
	return nil
}

func (s *ProviderSpec) validate() error {
	if !agentlens.ProviderKind(s.Kind).Valid() {
		return fmt.Errorf("unknown provider kind %q", s.Kind)
	}
	if s.APIKey == "" && s.APIKeyEnv == "" {
		return errors.New("one of api_key or api_key_env is required")
	}
	if s.APIKey != "" && s.APIKeyEnv != "" {
		return errors.New("api_key and api_key_env are mutually exclusive")
	}
	if agentlens.ProviderKind(s.Kind) == agentlens.ProviderOpenAICompatible && s.BaseURL == "" {
		return errors.New("base_url is required for openai_compatible providers")
	}
	return nil
}

func (s *MCPServerSpec) validate() error {
	transport := agentlens.MCPTransport(s.Transport)
	if !transport.Valid() {
		return fmt.Errorf("unknown transport %q", s.Transport)
	}
	switch transport {
	case agentlens.MCPTransportStdio:
		if s.Command == "" {
			return errors.New("command is required for stdio servers")
		}
	case agentlens.MCPTransportSSE, agentlens.MCPTransportHTTP:
		if s.URL == "" {
			return fmt.Errorf("url is required for %s servers", transport)
		}
	}
	return nil
}

// apiKey resolves the credential, reading the environment when the spec
// names a variable.
func (s *ProviderSpec) apiKey() (string, error) {
	if s.APIKey != "" {
		return s.APIKey, nil
	}
	key := os.Getenv(s.APIKeyEnv)
	if key == "" {
		return "", fmt.Errorf("environment variable %s is not set", s.APIKeyEnv)
	}
	return key, nil
}
