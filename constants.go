package agentlens

// TaskStatus represents the lifecycle of a task (mirrors the platform's
// task_status enum).
//
// State transitions:
//
//	pending ──────────────────┐
//	    │ (runner claims)     │
//	    v                     │
//	running ──────────────────┤
//	    │                     │
//	    ├──> paused           │ (operator pause, approval wait)
//	    ├──> completed        │ (agent finished)
//	    ├──> failed           │ (error, budget exceeded)
//	    └──> cancelled        │ (operator cancel)
//
//	paused ───────────────────┤
//	    │ (operator resume)   │
//	    └──> running          │
//
// Terminal states: completed, failed, cancelled
type TaskStatus string

const (
	TaskStatusPending   TaskStatus = "pending"
	TaskStatusRunning   TaskStatus = "running"
	TaskStatusPaused    TaskStatus = "paused"
	TaskStatusCompleted TaskStatus = "completed"
	TaskStatusFailed    TaskStatus = "failed"
	TaskStatusCancelled TaskStatus = "cancelled"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the status is a terminal state.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusCompleted || s == TaskStatusFailed || s == TaskStatusCancelled
}

// ProviderKind identifies which LLM provider API a provider config targets.
type ProviderKind string

const (
	// ProviderAnthropic uses the Anthropic Messages API.
	ProviderAnthropic ProviderKind = "anthropic"

	// ProviderOpenAI uses the OpenAI Chat Completions API.
	ProviderOpenAI ProviderKind = "openai"

	// ProviderOpenAICompatible uses the OpenAI wire format against a custom
	// base URL (Ollama, vLLM, gateways).
	ProviderOpenAICompatible ProviderKind = "openai_compatible"
)

// String returns the string representation of the provider kind.
func (k ProviderKind) String() string {
	return string(k)
}

// Valid reports whether the kind is one of the known provider kinds.
func (k ProviderKind) Valid() bool {
	switch k {
	case ProviderAnthropic, ProviderOpenAI, ProviderOpenAICompatible:
		return true
	}
	return false
}

// MCPTransport identifies how an MCP server is reached.
type MCPTransport string

const (
	// MCPTransportStdio launches the server as a subprocess and speaks over
	// stdin/stdout.
	MCPTransportStdio MCPTransport = "stdio"

	// MCPTransportSSE connects to a server-sent-events endpoint.
	MCPTransportSSE MCPTransport = "sse"

	// MCPTransportHTTP connects to a streamable HTTP endpoint.
	MCPTransportHTTP MCPTransport = "http"
)

// String returns the string representation of the transport.
func (t MCPTransport) String() string {
	return string(t)
}

// Valid reports whether the transport is one of the known transports.
func (t MCPTransport) Valid() bool {
	switch t {
	case MCPTransportStdio, MCPTransportSSE, MCPTransportHTTP:
		return true
	}
	return false
}

// ApprovalStatus represents the lifecycle of a human approval request.
//
// State transitions:
//
//	pending ──────────────────┐
//	    │ (operator responds) │
//	    ├──> approved         │
//	    └──> denied           │
//
// Terminal states: approved, denied
type ApprovalStatus string

const (
	ApprovalStatusPending  ApprovalStatus = "pending"
	ApprovalStatusApproved ApprovalStatus = "approved"
	ApprovalStatusDenied   ApprovalStatus = "denied"
)

// String returns the string representation of the approval status.
func (s ApprovalStatus) String() string {
	return string(s)
}

// IsTerminal returns true if the approval has been responded to.
func (s ApprovalStatus) IsTerminal() bool {
	return s == ApprovalStatusApproved || s == ApprovalStatusDenied
}

// MessageRole identifies the author of a conversation message.
type MessageRole string

const (
	MessageRoleSystem    MessageRole = "system"
	MessageRoleUser      MessageRole = "user"
	MessageRoleAssistant MessageRole = "assistant"
	MessageRoleTool      MessageRole = "tool"
)

// String returns the string representation of the message role.
func (r MessageRole) String() string {
	return string(r)
}

// MCPInstanceStatus represents the reported health of a connected MCP server
// instance.
type MCPInstanceStatus string

const (
	MCPInstanceConnected    MCPInstanceStatus = "connected"
	MCPInstanceDisconnected MCPInstanceStatus = "disconnected"
	MCPInstanceErrored      MCPInstanceStatus = "errored"
)

// String returns the string representation of the instance status.
func (s MCPInstanceStatus) String() string {
	return string(s)
}
