// Package agentlens is a Go client for the agentlens platform: an admin
// surface over fleets of AI agents, their LLM providers, MCP tool servers,
// and the tasks they run.
//
// The root package is the typed REST client. Subpackages build on it:
// stream follows live task event streams over SSE, recorder persists those
// streams, transcript exports conversations, manifest applies declarative
// resource definitions, auth handles tokens, and providercheck verifies
// provider credentials.
//
// # Quick Start
//
// Create a client and list what is running:
//
//	client, err := agentlens.NewClient(agentlens.Config{
//	    BaseURL: "https://agentlens.example.com",
//	    Token:   os.Getenv("AGENTLENS_TOKEN"),
//	})
//	if err != nil {
//	    return err
//	}
//
//	tasks, total, err := client.Tasks.List(ctx, agentlens.TaskListParams{
//	    Status: agentlens.TaskStatusRunning,
//	})
//
// Submit work and follow it live:
//
//	task, _ := client.Tasks.Create(ctx, agentlens.TaskCreateParams{
//	    AgentID:        agentID,
//	    Prompt:         "Summarize yesterday's incidents",
//	    BudgetLimitUSD: 2,
//	})
//
//	sc, _ := client.Tasks.Watch(ctx, task.ID, stream.Config{
//	    OnMessage: func(ev stream.Event) {
//	        fmt.Println(ev.Type)
//	    },
//	})
//	defer sc.Disconnect()
//
// # Services
//
// Every resource hangs off the client as a service: Agents, Providers, MCP,
// Tasks, Conversations, and Approvals. List operations take typed params
// with paging and return the total count alongside the page:
//
//	agents, total, err := client.Agents.List(ctx, agentlens.AgentListParams{
//	    ListOptions: agentlens.ListOptions{Limit: 100},
//	})
//
// # Errors
//
// API failures come back as *APIError carrying the operation, the HTTP
// status, and the platform's error code, wrapping a sentinel for the
// broad category:
//
//	agent, err := client.Agents.Get(ctx, id)
//	if errors.Is(err, agentlens.ErrNotFound) {
//	    // gone
//	}
//
// # The console
//
// cmd/agentlens is a terminal console over this client: list and inspect
// resources, watch and record task streams, export conversations, answer
// approvals, and apply YAML manifests. See the examples directory for
// smaller, focused programs.
package agentlens
