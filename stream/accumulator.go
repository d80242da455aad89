package stream

import (
	"sort"
	"sync"
	"time"
)

// TaskAccumulator folds a task's event sequence into a rolling snapshot.
//
// Apply is safe to call from a client's OnMessage callback while another
// goroutine reads Snapshot, which is how the console renders live task
// status.
type TaskAccumulator struct {
	mu           sync.Mutex
	snap         TaskSnapshot
	runningTools map[string]int
}

// TaskSnapshot is a point-in-time view of a task derived from its events.
type TaskSnapshot struct {
	TaskID   string
	Status   string
	Workflow string

	Iterations int
	LLMCalls   int
	ToolCalls  int

	// RunningTools lists tools with a started event and no matching
	// completed or failed event yet, sorted by name.
	RunningTools []string

	InputTokens  int
	OutputTokens int

	BudgetWarnings int
	BudgetExceeded bool

	PendingApprovals int

	Errors    int
	LastError string

	// Connected reports whether the server's connection-established frame
	// was seen.
	Connected bool

	LastEventAt time.Time
}

// Terminal returns true once the task reached a terminal status.
func (s *TaskSnapshot) Terminal() bool {
	return s.Status == "completed" || s.Status == "failed"
}

// NewTaskAccumulator creates an empty accumulator.
func NewTaskAccumulator() *TaskAccumulator {
	return &TaskAccumulator{
		runningTools: make(map[string]int),
	}
}

// Apply folds one event into the snapshot. Payloads that fail to decode are
// counted for their type but contribute no detail; a malformed payload never
// stops accumulation.
func (a *TaskAccumulator) Apply(event Event) {
	a.mu.Lock()
	defer a.mu.Unlock()

	a.snap.LastEventAt = event.ReceivedAt

	switch event.Type {
	case EventConnected:
		a.snap.Connected = true
		var p TaskPayload
		if event.Decode(&p) == nil && p.TaskID != "" {
			a.snap.TaskID = p.TaskID
		}

	case EventTaskCreated:
		a.applyTask(event, "pending")
	case EventTaskStarted, EventTaskResumed:
		a.applyTask(event, "running")
	case EventTaskPaused:
		a.applyTask(event, "paused")
	case EventTaskCompleted:
		a.applyTask(event, "completed")
	case EventTaskFailed:
		a.applyTask(event, "failed")

	case EventWorkflowStarted:
		var p WorkflowPayload
		if event.Decode(&p) == nil {
			a.snap.Workflow = p.Name
		}
	case EventWorkflowCompleted:
		a.snap.Workflow = ""
	case EventWorkflowFailed:
		var p WorkflowPayload
		if event.Decode(&p) == nil && p.Error != "" {
			a.snap.LastError = p.Error
		}
		a.snap.Workflow = ""

	case EventIterationStarted:
		a.snap.Iterations++
	case EventIterationCompleted:
		// Counted on start; completion carries no new state.

	case EventLLMCallStarted:
		a.snap.LLMCalls++
	case EventLLMCallCompleted:
		var p LLMCallPayload
		if event.Decode(&p) == nil {
			a.snap.InputTokens += p.InputTokens
			a.snap.OutputTokens += p.OutputTokens
		}
	case EventLLMCallFailed:
		a.snap.Errors++
		var p LLMCallPayload
		if event.Decode(&p) == nil && p.Error != "" {
			a.snap.LastError = p.Error
		}

	case EventToolCallStarted:
		var p ToolCallPayload
		if event.Decode(&p) == nil && p.Tool != "" {
			a.runningTools[p.Tool]++
		}
	case EventToolCallCompleted:
		a.snap.ToolCalls++
		a.finishTool(event)
	case EventToolCallFailed:
		a.snap.ToolCalls++
		a.snap.Errors++
		a.finishTool(event)

	case EventBudgetWarning:
		a.snap.BudgetWarnings++
	case EventBudgetExceeded:
		a.snap.BudgetExceeded = true

	case EventApprovalRequested:
		a.snap.PendingApprovals++
	case EventApprovalResponded:
		if a.snap.PendingApprovals > 0 {
			a.snap.PendingApprovals--
		}

	case EventError:
		a.snap.Errors++
		var p ErrorPayload
		if event.Decode(&p) == nil && p.Message != "" {
			a.snap.LastError = p.Message
		}

	case EventMessage:
		// Generic frames update the event clock only.
	}
}

// applyTask records a task lifecycle transition.
func (a *TaskAccumulator) applyTask(event Event, status string) {
	a.snap.Status = status
	var p TaskPayload
	if event.Decode(&p) == nil {
		if p.TaskID != "" {
			a.snap.TaskID = p.TaskID
		}
		if p.Error != "" {
			a.snap.LastError = p.Error
		}
	}
}

// finishTool removes one running entry for the tool named in the payload.
func (a *TaskAccumulator) finishTool(event Event) {
	var p ToolCallPayload
	if event.Decode(&p) != nil || p.Tool == "" {
		return
	}
	if p.Error != "" {
		a.snap.LastError = p.Error
	}
	if n := a.runningTools[p.Tool]; n > 1 {
		a.runningTools[p.Tool] = n - 1
	} else {
		delete(a.runningTools, p.Tool)
	}
}

// Snapshot returns a copy of the current state.
func (a *TaskAccumulator) Snapshot() TaskSnapshot {
	a.mu.Lock()
	defer a.mu.Unlock()

	snap := a.snap
	snap.RunningTools = make([]string, 0, len(a.runningTools))
	for tool := range a.runningTools {
		snap.RunningTools = append(snap.RunningTools, tool)
	}
	sort.Strings(snap.RunningTools)
	return snap
}
