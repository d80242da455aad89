package agentlens

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
)

// Version is the current agentlens version
const Version = "0.4.0"

// maxResponseSize caps how much of a response body is read.
const maxResponseSize = 8 << 20

// Meta contains pagination metadata returned alongside list responses.
type Meta struct {
	TotalCount int  `json:"total_count,omitempty"`
	HasMore    bool `json:"has_more,omitempty"`
	Limit      int  `json:"limit,omitempty"`
	Offset     int  `json:"offset,omitempty"`
}

// envelope wraps every API response body.
type envelope struct {
	Data  json.RawMessage `json:"data,omitempty"`
	Error *envelopeError  `json:"error,omitempty"`
	Meta  *Meta           `json:"meta,omitempty"`
}

// envelopeError is the error half of the response envelope.
type envelopeError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

// Client is a typed client for the agent-platform REST API.
//
// Per-resource operations hang off the service fields:
//
//	client, err := agentlens.NewClient(agentlens.Config{BaseURL: url, Token: token})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	tasks, total, err := client.Tasks.List(ctx, agentlens.TaskListParams{})
type Client struct {
	config     Config
	baseURL    *url.URL
	httpClient *http.Client
	tokens     TokenSource
	logger     Logger

	// Services for each API resource.
	Agents        *AgentService
	Providers     *ProviderService
	MCP           *MCPService
	Tasks         *TaskService
	Conversations *ConversationService
	Approvals     *ApprovalService
}

// NewClient creates an API client from the given configuration.
func NewClient(config Config) (*Client, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}
	config.applyDefaults()

	baseURL, err := url.Parse(strings.TrimRight(config.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("%w: BaseURL: %v", ErrInvalidConfig, err)
	}

	c := &Client{
		config:     config,
		baseURL:    baseURL,
		httpClient: config.HTTPClient,
		tokens:     config.TokenSource,
		logger:     config.Logger,
	}
	c.Agents = &AgentService{client: c}
	c.Providers = &ProviderService{client: c}
	c.MCP = &MCPService{client: c}
	c.Tasks = &TaskService{client: c}
	c.Conversations = &ConversationService{client: c}
	c.Approvals = &ApprovalService{client: c}

	return c, nil
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// endpoint builds the absolute URL for an API path.
func (c *Client) endpoint(path string, query url.Values) string {
	u := *c.baseURL
	u.Path = strings.TrimRight(u.Path, "/") + path
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	return u.String()
}

// newRequest builds an authenticated JSON request.
func (c *Client) newRequest(ctx context.Context, method, path string, query url.Values, body any) (*http.Request, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("agentlens: encode request: %w", err)
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(path, query), reader)
	if err != nil {
		return nil, fmt.Errorf("agentlens: create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.config.UserAgent)
	req.Header.Set("X-Request-ID", uuid.NewString())
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			return nil, fmt.Errorf("agentlens: token: %w", err)
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return req, nil
}

// do executes the request, decodes the response envelope, and unmarshals the
// data payload into out when out is non-nil. op names the operation for error
// context, e.g. "list agents".
func (c *Client) do(req *http.Request, op string, out any) (*Meta, error) {
	c.logger.Debug("api request", "op", op, "method", req.Method, "path", req.URL.Path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &APIError{Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	if err != nil {
		return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Err: err}
	}

	var env envelope
	if len(body) > 0 {
		// A non-JSON body (e.g. a proxy error page) must not mask the status
		// code, so the decode error is ignored here.
		_ = json.Unmarshal(body, &env)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := &APIError{Op: op, StatusCode: resp.StatusCode, Err: statusError(resp.StatusCode)}
		if env.Error != nil {
			apiErr.Code = env.Error.Code
			apiErr.Message = env.Error.Message
		}
		c.logger.Warn("api error", "op", op, "status", resp.StatusCode, "code", apiErr.Code)
		return nil, apiErr
	}

	if out != nil && len(env.Data) > 0 {
		if err := json.Unmarshal(env.Data, out); err != nil {
			return nil, &APIError{Op: op, StatusCode: resp.StatusCode, Err: fmt.Errorf("decode response: %w", err)}
		}
	}

	return env.Meta, nil
}

// get issues a GET request and decodes the data payload into out.
func (c *Client) get(ctx context.Context, op, path string, query url.Values, out any) (*Meta, error) {
	req, err := c.newRequest(ctx, http.MethodGet, path, query, nil)
	if err != nil {
		return nil, err
	}
	return c.do(req, op, out)
}

// post issues a POST request with an optional JSON body.
func (c *Client) post(ctx context.Context, op, path string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPost, path, nil, body)
	if err != nil {
		return err
	}
	_, err = c.do(req, op, out)
	return err
}

// patch issues a PATCH request with a JSON body.
func (c *Client) patch(ctx context.Context, op, path string, body, out any) error {
	req, err := c.newRequest(ctx, http.MethodPatch, path, nil, body)
	if err != nil {
		return err
	}
	_, err = c.do(req, op, out)
	return err
}

// delete issues a DELETE request.
func (c *Client) delete(ctx context.Context, op, path string) error {
	req, err := c.newRequest(ctx, http.MethodDelete, path, nil, nil)
	if err != nil {
		return err
	}
	_, err = c.do(req, op, nil)
	return err
}
