package providercheck

import (
	"context"
	"fmt"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"

	"github.com/agentlens/agentlens"
)

// defaultAnthropicModel is used for the verification ping when the config
// has no default model. The cheapest current model keeps the check free in
// practice.
const defaultAnthropicModel = "claude-3-5-haiku-latest"

// AnthropicVerifier checks Anthropic credentials with a one-token message.
type AnthropicVerifier struct{}

// NewAnthropicVerifier creates a verifier for the Anthropic Messages API.
func NewAnthropicVerifier() *AnthropicVerifier {
	return &AnthropicVerifier{}
}

// Kind returns the provider kind this verifier handles.
func (v *AnthropicVerifier) Kind() agentlens.ProviderKind {
	return agentlens.ProviderAnthropic
}

// Verify sends a one-token message with the config's credentials.
func (v *AnthropicVerifier) Verify(ctx context.Context, cfg agentlens.ProviderConfig) (*Result, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("providercheck: %w", ErrMissingAPIKey)
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultAnthropicModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := anthropic.NewClient(opts...)

	start := time.Now()
	msg, err := client.Messages.New(ctx, anthropic.MessageNewParams{
		Model:     anthropic.Model(model),
		MaxTokens: 1,
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock("ping")),
		},
	})
	latency := time.Since(start)

	if err != nil {
		// The context's own cancellation is the caller's, not a rejection.
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &Result{OK: false, Model: model, Latency: latency, Detail: err.Error()}, nil
	}

	return &Result{
		OK:      true,
		Model:   string(msg.Model),
		Latency: latency,
		Detail:  fmt.Sprintf("responded with %d output tokens", msg.Usage.OutputTokens),
	}, nil
}
