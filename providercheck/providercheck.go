// Package providercheck verifies LLM provider credentials with a live
// round trip before a provider config is saved.
//
// A Verifier exists per provider kind; the Registry dispatches a config to
// the right one:
//
//	registry := providercheck.DefaultRegistry()
//	result, err := registry.Verify(ctx, cfg)
//	if err != nil {
//	    return err // config not verifiable: missing key, unknown kind
//	}
//	if !result.OK {
//	    fmt.Println("rejected:", result.Detail)
//	}
//
// A rejected credential is a negative Result, not an error: the error
// return is reserved for configs that cannot be checked at all.
package providercheck

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/agentlens/agentlens"
)

// Common errors
var (
	// ErrMissingAPIKey is returned when the config has no API key to verify
	ErrMissingAPIKey = errors.New("api key is required")

	// ErrUnknownKind is returned when no verifier is registered for the
	// config's provider kind
	ErrUnknownKind = errors.New("unknown provider kind")

	// ErrAlreadyRegistered is returned when a verifier for the kind exists
	ErrAlreadyRegistered = errors.New("verifier already registered")
)

// Result is the outcome of one verification round trip.
type Result struct {
	// OK reports whether the provider accepted the credentials.
	OK bool

	// Model is the model the verification request ran against.
	Model string

	// Latency is how long the round trip took.
	Latency time.Duration

	// Detail carries the provider's rejection message when OK is false.
	Detail string
}

// Verifier checks one provider kind's credentials.
type Verifier interface {
	// Kind returns the provider kind this verifier handles.
	Kind() agentlens.ProviderKind

	// Verify performs a minimal round trip with the config's credentials.
	// It returns an error only when the config cannot be checked (missing
	// key, unusable base URL); a rejected credential is Result{OK: false}.
	Verify(ctx context.Context, cfg agentlens.ProviderConfig) (*Result, error)
}

// Registry dispatches provider configs to the verifier for their kind.
type Registry struct {
	mu        sync.RWMutex
	verifiers map[agentlens.ProviderKind]Verifier
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		verifiers: make(map[agentlens.ProviderKind]Verifier),
	}
}

// DefaultRegistry returns a registry with the built-in verifiers
// registered: Anthropic, OpenAI, and OpenAI-compatible.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.MustRegister(NewAnthropicVerifier())
	r.MustRegister(NewOpenAIVerifier())
	r.MustRegister(NewOpenAICompatibleVerifier())
	return r
}

// Register adds a verifier for its kind. Registering a second verifier for
// the same kind is an error.
func (r *Registry) Register(v Verifier) error {
	if v == nil {
		return fmt.Errorf("providercheck: verifier is nil")
	}
	kind := v.Kind()
	if kind == "" {
		return fmt.Errorf("providercheck: verifier kind is empty")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.verifiers[kind]; exists {
		return fmt.Errorf("providercheck: %w: %s", ErrAlreadyRegistered, kind)
	}

	r.verifiers[kind] = v
	return nil
}

// MustRegister is like Register but panics on error.
func (r *Registry) MustRegister(v Verifier) {
	if err := r.Register(v); err != nil {
		panic(err)
	}
}

// Lookup returns the verifier registered for a kind.
func (r *Registry) Lookup(kind agentlens.ProviderKind) (Verifier, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	v, ok := r.verifiers[kind]
	return v, ok
}

// Kinds returns the provider kinds with a registered verifier.
func (r *Registry) Kinds() []agentlens.ProviderKind {
	r.mu.RLock()
	defer r.mu.RUnlock()

	kinds := make([]agentlens.ProviderKind, 0, len(r.verifiers))
	for kind := range r.verifiers {
		kinds = append(kinds, kind)
	}
	return kinds
}

// Verify dispatches the config to the verifier for its kind.
func (r *Registry) Verify(ctx context.Context, cfg agentlens.ProviderConfig) (*Result, error) {
	v, ok := r.Lookup(cfg.Kind)
	if !ok {
		return nil, fmt.Errorf("providercheck: %w: %q", ErrUnknownKind, cfg.Kind)
	}
	return v.Verify(ctx, cfg)
}
