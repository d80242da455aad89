package stream

import (
	"encoding/json"
	"time"
)

// EventType represents the type of a task stream event.
type EventType string

// Event types pushed by the task event stream. The set is closed: frames
// tagged with any other name, and untagged frames, are delivered as
// EventMessage rather than dropped.
const (
	// EventConnected is sent by the server once when the stream opens.
	EventConnected EventType = "connected"

	// Task lifecycle events.
	EventTaskCreated   EventType = "task_created"
	EventTaskStarted   EventType = "task_started"
	EventTaskPaused    EventType = "task_paused"
	EventTaskResumed   EventType = "task_resumed"
	EventTaskCompleted EventType = "task_completed"
	EventTaskFailed    EventType = "task_failed"

	// Workflow lifecycle events.
	EventWorkflowStarted   EventType = "workflow_started"
	EventWorkflowCompleted EventType = "workflow_completed"
	EventWorkflowFailed    EventType = "workflow_failed"

	// Iteration lifecycle events.
	EventIterationStarted   EventType = "iteration_started"
	EventIterationCompleted EventType = "iteration_completed"

	// LLM call lifecycle events.
	EventLLMCallStarted   EventType = "llm_call_started"
	EventLLMCallCompleted EventType = "llm_call_completed"
	EventLLMCallFailed    EventType = "llm_call_failed"

	// Tool call lifecycle events.
	EventToolCallStarted   EventType = "tool_call_started"
	EventToolCallCompleted EventType = "tool_call_completed"
	EventToolCallFailed    EventType = "tool_call_failed"

	// Budget events.
	EventBudgetWarning  EventType = "budget_warning"
	EventBudgetExceeded EventType = "budget_exceeded"

	// Human approval events.
	EventApprovalRequested EventType = "approval_requested"
	EventApprovalResponded EventType = "approval_responded"

	// EventError is sent by the server when the task pipeline reports an error.
	EventError EventType = "error"

	// EventMessage is the generic fallback for untagged frames and for
	// frames whose name is not in the vocabulary above.
	EventMessage EventType = "message"
)

// eventTypes is the closed vocabulary of named events the stream can carry.
var eventTypes = map[EventType]struct{}{
	EventConnected:          {},
	EventTaskCreated:        {},
	EventTaskStarted:        {},
	EventTaskPaused:         {},
	EventTaskResumed:        {},
	EventTaskCompleted:      {},
	EventTaskFailed:         {},
	EventWorkflowStarted:    {},
	EventWorkflowCompleted:  {},
	EventWorkflowFailed:     {},
	EventIterationStarted:   {},
	EventIterationCompleted: {},
	EventLLMCallStarted:     {},
	EventLLMCallCompleted:   {},
	EventLLMCallFailed:      {},
	EventToolCallStarted:    {},
	EventToolCallCompleted:  {},
	EventToolCallFailed:     {},
	EventBudgetWarning:      {},
	EventBudgetExceeded:     {},
	EventApprovalRequested:  {},
	EventApprovalResponded:  {},
	EventError:              {},
	EventMessage:            {},
}

// EventTypes returns the full event vocabulary.
func EventTypes() []EventType {
	types := make([]EventType, 0, len(eventTypes))
	for t := range eventTypes {
		types = append(types, t)
	}
	return types
}

// Classify maps an on-wire frame name to an event type. Untagged frames and
// unrecognized names classify as EventMessage; an unknown name is never an
// error.
func Classify(name string) EventType {
	if name == "" {
		return EventMessage
	}
	if _, ok := eventTypes[EventType(name)]; ok {
		return EventType(name)
	}
	return EventMessage
}

// String returns the string representation of the event type.
func (t EventType) String() string {
	return string(t)
}

// IsTerminal returns true if the event marks the end of a task's lifecycle.
func (t EventType) IsTerminal() bool {
	return t == EventTaskCompleted || t == EventTaskFailed
}

// Event is the normalized record delivered to the subscriber.
type Event struct {
	// Type is the classified event type.
	Type EventType

	// Data is the parsed JSON payload. When the payload is not valid JSON
	// it holds the raw payload string instead; delivery is never skipped
	// because of a malformed payload.
	Data any

	// ReceivedAt is when the frame was received.
	ReceivedAt time.Time
}

// Decode re-marshals the event payload into a typed struct. It fails if the
// payload was delivered as a raw string or does not match the target shape.
func (e *Event) Decode(out any) error {
	raw, err := json.Marshal(e.Data)
	if err != nil {
		return err
	}
	return json.Unmarshal(raw, out)
}

// TaskPayload is the payload shape of task lifecycle events.
type TaskPayload struct {
	TaskID string `json:"task_id"`
	Status string `json:"status,omitempty"`
	Error  string `json:"error,omitempty"`
}

// WorkflowPayload is the payload shape of workflow lifecycle events.
type WorkflowPayload struct {
	WorkflowID string `json:"workflow_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Error      string `json:"error,omitempty"`
}

// IterationPayload is the payload shape of iteration lifecycle events.
type IterationPayload struct {
	Iteration int `json:"iteration"`
}

// LLMCallPayload is the payload shape of LLM call lifecycle events.
type LLMCallPayload struct {
	Model        string `json:"model,omitempty"`
	InputTokens  int    `json:"input_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	DurationMs   int64  `json:"duration_ms,omitempty"`
	Error        string `json:"error,omitempty"`
}

// ToolCallPayload is the payload shape of tool call lifecycle events.
type ToolCallPayload struct {
	Tool       string `json:"tool"`
	Result     string `json:"result,omitempty"`
	DurationMs int64  `json:"duration_ms,omitempty"`
	Error      string `json:"error,omitempty"`
}

// BudgetPayload is the payload shape of budget events.
type BudgetPayload struct {
	SpentUSD float64 `json:"spent_usd"`
	LimitUSD float64 `json:"limit_usd"`
	Percent  float64 `json:"percent,omitempty"`
}

// ApprovalPayload is the payload shape of human approval events.
type ApprovalPayload struct {
	ApprovalID  string `json:"approval_id"`
	Tool        string `json:"tool,omitempty"`
	Reason      string `json:"reason,omitempty"`
	Approved    *bool  `json:"approved,omitempty"`
	RespondedBy string `json:"responded_by,omitempty"`
}

// ErrorPayload is the payload shape of error events.
type ErrorPayload struct {
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}
