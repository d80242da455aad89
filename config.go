package agentlens

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Default configuration values.
const (
	DefaultRequestTimeout = 30 * time.Second
)

// TokenSource supplies a bearer token per request. The auth package provides
// implementations; a fixed token can be passed through Config.Token instead.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// staticToken is the TokenSource behind Config.Token.
type staticToken string

func (t staticToken) Token(context.Context) (string, error) {
	return string(t), nil
}

// Config holds configuration for the API client.
//
// Example:
//
//	client, _ := agentlens.NewClient(agentlens.Config{
//	    BaseURL: "https://platform.example.com",
//	    Token:   os.Getenv("AGENTLENS_TOKEN"),
//	})
type Config struct {
	// BaseURL is the root URL of the platform API (required)
	BaseURL string

	// Token is a static bearer token (optional)
	Token string

	// TokenSource supplies bearer tokens per request (optional, takes
	// precedence over Token). Use auth.FromFile to pick up rotated tokens.
	TokenSource TokenSource

	// HTTPClient is used for API requests (optional)
	// Default: http.Client with a 30 second timeout
	HTTPClient *http.Client

	// UserAgent is sent with every request (optional)
	// Default: "agentlens/<version>"
	UserAgent string

	// Logger for structured logging.
	// If nil, logging is disabled.
	Logger Logger
}

// DefaultConfig returns a new Config with default values. BaseURL and
// credentials still have to be filled in.
func DefaultConfig() Config {
	return Config{
		HTTPClient: &http.Client{Timeout: DefaultRequestTimeout},
		UserAgent:  "agentlens/" + Version,
	}
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("%w: BaseURL is required", ErrInvalidConfig)
	}
	u, err := url.Parse(c.BaseURL)
	if err != nil {
		return fmt.Errorf("%w: BaseURL: %v", ErrInvalidConfig, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("%w: BaseURL scheme must be http or https", ErrInvalidConfig)
	}
	return nil
}

// applyDefaults fills in default values for zero-valued fields.
func (c *Config) applyDefaults() {
	if c.HTTPClient == nil {
		c.HTTPClient = &http.Client{Timeout: DefaultRequestTimeout}
	}
	if c.UserAgent == "" {
		c.UserAgent = "agentlens/" + Version
	}
	if c.TokenSource == nil && c.Token != "" {
		c.TokenSource = staticToken(c.Token)
	}
	if c.Logger == nil {
		c.Logger = nopLogger{}
	}
}
