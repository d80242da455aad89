package agentlens

import (
	"time"

	"github.com/google/uuid"
)

// Agent is an agent definition: the prompt, model, provider, and tool servers
// a task runs with.
type Agent struct {
	ID               uuid.UUID      `json:"id"`
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	SystemPrompt     string         `json:"system_prompt"`
	Model            string         `json:"model"`
	ProviderConfigID uuid.UUID      `json:"provider_config_id"`
	MCPServerIDs     []uuid.UUID    `json:"mcp_server_ids,omitempty"`
	MaxIterations    int            `json:"max_iterations,omitempty"`
	Metadata         map[string]any `json:"metadata,omitempty"`
	CreatedAt        time.Time      `json:"created_at"`
	UpdatedAt        time.Time      `json:"updated_at"`
}

// ProviderConfig holds the connection settings for one LLM provider.
type ProviderConfig struct {
	ID           uuid.UUID    `json:"id"`
	Name         string       `json:"name"`
	Kind         ProviderKind `json:"kind"`
	BaseURL      string       `json:"base_url,omitempty"`
	DefaultModel string       `json:"default_model,omitempty"`

	// APIKey is write-only: the caller sets it for creation and credential
	// verification. The API never returns it.
	APIKey string `json:"api_key,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// MCPServer is a registered MCP (tool) server definition.
type MCPServer struct {
	ID        uuid.UUID         `json:"id"`
	Name      string            `json:"name"`
	Transport MCPTransport      `json:"transport"`
	Command   string            `json:"command,omitempty"`
	URL       string            `json:"url,omitempty"`
	Env       map[string]string `json:"env,omitempty"`
	CreatedAt time.Time         `json:"created_at"`
	UpdatedAt time.Time         `json:"updated_at"`
}

// MCPInstance is a live connection to an MCP server, reporting the tools it
// exposes.
type MCPInstance struct {
	ID         uuid.UUID         `json:"id"`
	ServerID   uuid.UUID         `json:"server_id"`
	Status     MCPInstanceStatus `json:"status"`
	Tools      []string          `json:"tools,omitempty"`
	LastSeenAt time.Time         `json:"last_seen_at"`
}

// TaskBudget is the spend ceiling attached to a task.
type TaskBudget struct {
	LimitUSD float64 `json:"limit_usd"`
	SpentUSD float64 `json:"spent_usd"`
}

// Task is one unit of agent work.
type Task struct {
	ID          uuid.UUID   `json:"id"`
	AgentID     uuid.UUID   `json:"agent_id"`
	Status      TaskStatus  `json:"status"`
	Prompt      string      `json:"prompt"`
	Error       string      `json:"error,omitempty"`
	Budget      *TaskBudget `json:"budget,omitempty"`
	CreatedAt   time.Time   `json:"created_at"`
	StartedAt   *time.Time  `json:"started_at,omitempty"`
	CompletedAt *time.Time  `json:"completed_at,omitempty"`
}

// Conversation groups the messages exchanged while a task ran.
type Conversation struct {
	ID           uuid.UUID `json:"id"`
	TaskID       uuid.UUID `json:"task_id"`
	Title        string    `json:"title,omitempty"`
	MessageCount int       `json:"message_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ToolCall is a tool invocation recorded on an assistant message.
type ToolCall struct {
	Tool   string `json:"tool"`
	Input  string `json:"input,omitempty"`
	Result string `json:"result,omitempty"`
	Error  string `json:"error,omitempty"`
}

// Message is a single conversation message.
type Message struct {
	ID             uuid.UUID   `json:"id"`
	ConversationID uuid.UUID   `json:"conversation_id"`
	Role           MessageRole `json:"role"`
	Content        string      `json:"content"`
	ToolCalls      []ToolCall  `json:"tool_calls,omitempty"`
	Usage          *Usage      `json:"usage,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

// Usage contains token usage statistics for an LLM call.
type Usage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Add combines two Usage values.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:  u.InputTokens + other.InputTokens,
		OutputTokens: u.OutputTokens + other.OutputTokens,
	}
}

// Total returns the total number of tokens (input + output).
func (u Usage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Approval is a human approval request raised by a running task.
type Approval struct {
	ID          uuid.UUID      `json:"id"`
	TaskID      uuid.UUID      `json:"task_id"`
	Tool        string         `json:"tool"`
	Reason      string         `json:"reason,omitempty"`
	Status      ApprovalStatus `json:"status"`
	RespondedBy string         `json:"responded_by,omitempty"`
	RequestedAt time.Time      `json:"requested_at"`
	RespondedAt *time.Time     `json:"responded_at,omitempty"`
}

// Helper functions for working with pointers

// Ptr returns a pointer to the given value.
func Ptr[T any](v T) *T {
	return &v
}

// Deref returns the value pointed to by p, or the zero value if p is nil.
func Deref[T any](p *T) T {
	if p == nil {
		var zero T
		return zero
	}
	return *p
}

// DerefOr returns the value pointed to by p, or the default value if p is nil.
func DerefOr[T any](p *T, def T) T {
	if p == nil {
		return def
	}
	return *p
}
