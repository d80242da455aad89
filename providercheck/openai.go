package providercheck

import (
	"context"
	"fmt"
	"time"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/agentlens/agentlens"
)

// defaultOpenAIModel is used for the verification ping when the config has
// no default model.
const defaultOpenAIModel = "gpt-4o-mini"

// OpenAIVerifier checks OpenAI-wire-format credentials with a one-token
// chat completion. The same implementation serves both the hosted OpenAI
// API and OpenAI-compatible endpoints (Ollama, vLLM, gateways), which
// differ only in base URL.
type OpenAIVerifier struct {
	kind agentlens.ProviderKind
}

// NewOpenAIVerifier creates a verifier for the hosted OpenAI API.
func NewOpenAIVerifier() *OpenAIVerifier {
	return &OpenAIVerifier{kind: agentlens.ProviderOpenAI}
}

// NewOpenAICompatibleVerifier creates a verifier for OpenAI-compatible
// endpoints. A base URL in the config is required for this kind.
func NewOpenAICompatibleVerifier() *OpenAIVerifier {
	return &OpenAIVerifier{kind: agentlens.ProviderOpenAICompatible}
}

// Kind returns the provider kind this verifier handles.
func (v *OpenAIVerifier) Kind() agentlens.ProviderKind {
	return v.kind
}

// Verify sends a one-token chat completion with the config's credentials.
func (v *OpenAIVerifier) Verify(ctx context.Context, cfg agentlens.ProviderConfig) (*Result, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("providercheck: %w", ErrMissingAPIKey)
	}
	if v.kind == agentlens.ProviderOpenAICompatible && cfg.BaseURL == "" {
		return nil, fmt.Errorf("providercheck: base url is required for %s", v.kind)
	}

	model := cfg.DefaultModel
	if model == "" {
		model = defaultOpenAIModel
	}

	opts := []option.RequestOption{option.WithAPIKey(cfg.APIKey)}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	client := openai.NewClient(opts...)

	params := openai.ChatCompletionNewParams{
		Model: openai.ChatModel(model),
		Messages: []openai.ChatCompletionMessageParamUnion{
			{
				OfUser: &openai.ChatCompletionUserMessageParam{
					Content: openai.ChatCompletionUserMessageParamContentUnion{
						OfString: openai.String("ping"),
					},
				},
			},
		},
		MaxCompletionTokens: openai.Int(1),
	}

	start := time.Now()
	resp, err := client.Chat.Completions.New(ctx, params)
	latency := time.Since(start)

	if err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		return &Result{OK: false, Model: model, Latency: latency, Detail: err.Error()}, nil
	}

	respModel := resp.Model
	if respModel == "" {
		respModel = model
	}
	return &Result{
		OK:      true,
		Model:   respModel,
		Latency: latency,
		Detail:  fmt.Sprintf("responded with %d completion tokens", resp.Usage.CompletionTokens),
	}, nil
}
