package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
	"github.com/agentlens/agentlens/auth"
	"github.com/agentlens/agentlens/recorder"
	"github.com/agentlens/agentlens/stream"
	"github.com/agentlens/agentlens/transcript"
)

// --- agentlens tasks ---

func newTasksCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "tasks",
		Short: "Submit, steer, and follow tasks",
	}
	cmd.AddCommand(
		newTasksListCmd(),
		newTasksGetCmd(),
		newTasksCreateCmd(),
		newTasksPauseCmd(),
		newTasksResumeCmd(),
		newTasksCancelCmd(),
		newTasksWatchCmd(),
		newTasksRecordCmd(),
	)
	return cmd
}

func newTasksListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks",
		RunE:  runTasksList,
	}
	cmd.Flags().String("status", "", "filter by status (pending, running, paused, completed, failed, cancelled)")
	cmd.Flags().String("agent", "", "filter by agent id")
	addListFlags(cmd)
	return cmd
}

func runTasksList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	params := agentlens.TaskListParams{ListOptions: listOptions(cmd)}
	if status, _ := cmd.Flags().GetString("status"); status != "" {
		params.Status = agentlens.TaskStatus(status)
	}
	if agent, _ := cmd.Flags().GetString("agent"); agent != "" {
		id, err := parseID(agent)
		if err != nil {
			return err
		}
		params.AgentID = &id
	}

	tasks, total, err := client.Tasks.List(cmd.Context(), params)
	if err != nil {
		return err
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks match.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tAGENT\tSTATUS\tSPENT\tCREATED")
	for _, t := range tasks {
		spent := "-"
		if t.Budget != nil {
			spent = fmt.Sprintf("$%.2f/$%.2f", t.Budget.SpentUSD, t.Budget.LimitUSD)
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(t.ID), shortID(t.AgentID), t.Status, spent, timeAgo(t.CreatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	footer(len(tasks), total)
	return nil
}

func newTasksGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one task in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksGet,
	}
}

func runTasksGet(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	t, err := client.Tasks.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("ID:       %s\n", t.ID)
	fmt.Printf("Agent:    %s\n", t.AgentID)
	fmt.Printf("Status:   %s\n", t.Status)
	if t.Budget != nil {
		fmt.Printf("Budget:   $%.2f spent of $%.2f\n", t.Budget.SpentUSD, t.Budget.LimitUSD)
	}
	fmt.Printf("Created:  %s\n", timeAgo(t.CreatedAt))
	if t.StartedAt != nil {
		fmt.Printf("Started:  %s\n", timeAgo(*t.StartedAt))
	}
	if t.CompletedAt != nil {
		fmt.Printf("Finished: %s\n", timeAgo(*t.CompletedAt))
		if t.StartedAt != nil {
			fmt.Printf("Runtime:  %s\n", transcript.FormatDuration(t.CompletedAt.Sub(*t.StartedAt)))
		}
	}
	if t.Error != "" {
		fmt.Printf("Error:    %s\n", t.Error)
	}
	fmt.Println()
	fmt.Println("Prompt:")
	fmt.Println(indent(t.Prompt, "  "))
	return nil
}

func newTasksCreateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Submit a task to an agent",
		RunE:  runTasksCreate,
	}
	cmd.Flags().String("agent", "", "agent id to run the task (required)")
	cmd.Flags().String("prompt", "", "task prompt, or - to read stdin (required)")
	cmd.Flags().Float64("budget", 0, "spend ceiling in USD (0 for none)")
	return cmd
}

func runTasksCreate(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	agentArg, _ := cmd.Flags().GetString("agent")
	if agentArg == "" {
		return fmt.Errorf("--agent is required")
	}
	agentID, err := parseID(agentArg)
	if err != nil {
		return err
	}

	prompt, _ := cmd.Flags().GetString("prompt")
	if prompt == "-" {
		raw, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read prompt from stdin: %w", err)
		}
		prompt = strings.TrimSpace(string(raw))
	}
	if prompt == "" {
		return fmt.Errorf("--prompt is required")
	}

	budget, _ := cmd.Flags().GetFloat64("budget")
	task, err := client.Tasks.Create(cmd.Context(), agentlens.TaskCreateParams{
		AgentID:        agentID,
		Prompt:         prompt,
		BudgetLimitUSD: budget,
	})
	if err != nil {
		return err
	}

	fmt.Printf("Created task %s (status %s).\n", task.ID, task.Status)
	fmt.Printf("Follow it with \"agentlens tasks watch %s\".\n", shortID(task.ID))
	return nil
}

func newTasksPauseCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "pause <id>",
		Short: "Pause a running task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transitionTask(cmd, args[0], func(ctx context.Context, c *agentlens.Client, id uuid.UUID) (*agentlens.Task, error) {
				return c.Tasks.Pause(ctx, id)
			})
		},
	}
}

func newTasksResumeCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "resume <id>",
		Short: "Resume a paused task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transitionTask(cmd, args[0], func(ctx context.Context, c *agentlens.Client, id uuid.UUID) (*agentlens.Task, error) {
				return c.Tasks.Resume(ctx, id)
			})
		},
	}
}

func newTasksCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel <id>",
		Short: "Cancel a task",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return transitionTask(cmd, args[0], func(ctx context.Context, c *agentlens.Client, id uuid.UUID) (*agentlens.Task, error) {
				return c.Tasks.Cancel(ctx, id)
			})
		},
	}
}

func transitionTask(cmd *cobra.Command, arg string, op func(context.Context, *agentlens.Client, uuid.UUID) (*agentlens.Task, error)) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(arg)
	if err != nil {
		return err
	}

	task, err := op(cmd.Context(), client, id)
	if err != nil {
		return err
	}
	fmt.Printf("Task %s is now %s.\n", shortID(task.ID), task.Status)
	return nil
}

// --- agentlens tasks watch ---

func newTasksWatchCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "watch <id>",
		Short: "Follow a task's event stream live",
		Args:  cobra.ExactArgs(1),
		RunE:  runTasksWatch,
	}
}

func runTasksWatch(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	headers, err := streamHeaders(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	events, err := stream.Watch(ctx, client.Tasks.EventsURL(id), stream.Config{
		Headers: headers,
		OnError: func(err error) {
			fmt.Fprintln(os.Stderr, "stream:", err)
		},
	})
	if err != nil {
		return err
	}

	fmt.Printf("Watching task %s. Press Ctrl-C to stop.\n\n", shortID(id))

	acc := stream.NewTaskAccumulator()
	for ev := range events {
		printEvent(ev)
		acc.Apply(ev)
		if snap := acc.Snapshot(); snap.Terminal() {
			// Tear down the stream; the range ends when the channel closes.
			cancel()
		}
	}

	printSnapshot(acc.Snapshot())
	return nil
}

// streamHeaders resolves a concrete bearer token for a direct stream
// connection, which bypasses the API client and its token source.
func streamHeaders(cmd *cobra.Command) (map[string]string, error) {
	_, token, cfg, err := resolveEndpoint(cmd)
	if err != nil {
		return nil, err
	}
	if token == "" && cfg.TokenFile != "" {
		token, err = auth.FromFile(cfg.TokenFile).Token(cmd.Context())
		if err != nil {
			return nil, err
		}
	}
	if token == "" {
		return nil, nil
	}
	return map[string]string{"Authorization": "Bearer " + token}, nil
}

// printEvent renders one stream event as a line: time, type, and a short
// summary of the payload.
func printEvent(ev stream.Event) {
	detail := eventDetail(ev)
	if detail == "" {
		fmt.Printf("%s  %s\n", ev.ReceivedAt.Format("15:04:05"), ev.Type)
		return
	}
	fmt.Printf("%s  %-22s %s\n", ev.ReceivedAt.Format("15:04:05"), ev.Type, detail)
}

// eventDetail pulls the fields worth a glance out of an event payload.
func eventDetail(ev stream.Event) string {
	switch data := ev.Data.(type) {
	case string:
		return transcript.Truncate(data, 60)
	case map[string]any:
		var parts []string
		for _, key := range []string{"tool", "model", "status", "reason", "message", "error"} {
			if v, ok := data[key]; ok {
				parts = append(parts, fmt.Sprintf("%s=%v", key, v))
			}
		}
		return strings.Join(parts, " ")
	default:
		return ""
	}
}

// printSnapshot renders the accumulated task state once a watch ends.
func printSnapshot(snap stream.TaskSnapshot) {
	fmt.Println()
	status := snap.Status
	if status == "" {
		status = "unknown"
	}
	fmt.Printf("Status:      %s\n", status)
	fmt.Printf("Iterations:  %d\n", snap.Iterations)
	fmt.Printf("LLM calls:   %d\n", snap.LLMCalls)
	fmt.Printf("Tool calls:  %d\n", snap.ToolCalls)
	fmt.Printf("Tokens:      %s in / %s out\n",
		transcript.FormatTokens(snap.InputTokens), transcript.FormatTokens(snap.OutputTokens))
	if snap.BudgetExceeded {
		fmt.Println("Budget:      exceeded")
	} else if snap.BudgetWarnings > 0 {
		fmt.Printf("Budget:      %d warning(s)\n", snap.BudgetWarnings)
	}
	if snap.PendingApprovals > 0 {
		fmt.Printf("Approvals:   %d pending\n", snap.PendingApprovals)
	}
	if snap.Errors > 0 {
		fmt.Printf("Errors:      %d (last: %s)\n", snap.Errors, snap.LastError)
	}
}

// --- agentlens tasks record ---

func newTasksRecordCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "record <id>",
		Short: "Record a task's event stream to a local database",
		Long: `record follows a task's event stream and appends every event to a
local SQLite database for later inspection. Recording runs until the task
reaches a terminal state or you press Ctrl-C.`,
		Args: cobra.ExactArgs(1),
		RunE: runTasksRecord,
	}
	cmd.Flags().String("db", "", "database path (default from config, else ~/.local/share/agentlens/events.db)")
	return cmd
}

func runTasksRecord(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	headers, err := streamHeaders(cmd)
	if err != nil {
		return err
	}

	dbPath, _ := cmd.Flags().GetString("db")
	if dbPath == "" {
		if cfg, err := loadConfig(); err == nil && cfg.Defaults.RecordDB != "" {
			dbPath = cfg.Defaults.RecordDB
		}
	}
	if dbPath == "" {
		dbPath, err = recorder.DefaultSQLitePath()
		if err != nil {
			return err
		}
	}

	sink, err := recorder.NewSQLiteSink(dbPath)
	if err != nil {
		return err
	}
	defer sink.Close()

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	acc := stream.NewTaskAccumulator()
	rec := recorder.NewRecorder(client.Tasks.EventsURL(id), sink, &recorder.Config{
		Stream: stream.Config{
			Headers: headers,
			OnMessage: func(ev stream.Event) {
				printEvent(ev)
				acc.Apply(ev)
				if snap := acc.Snapshot(); snap.Terminal() {
					cancel()
				}
			},
			OnError: func(err error) {
				fmt.Fprintln(os.Stderr, "stream:", err)
			},
		},
		OnRecordError: func(err error) {
			fmt.Fprintln(os.Stderr, "record:", err)
		},
	})

	if err := rec.Start(ctx); err != nil {
		return err
	}
	fmt.Printf("Recording task %s to %s. Press Ctrl-C to stop.\n\n", shortID(id), dbPath)

	<-ctx.Done()
	if err := rec.Stop(context.Background()); err != nil {
		return err
	}

	recorded, failed := rec.Counts()
	fmt.Printf("\nRecorded %s event(s)", humanize.Comma(recorded))
	if failed > 0 {
		fmt.Printf(", %d write(s) failed", failed)
	}
	fmt.Println(".")
	return nil
}
