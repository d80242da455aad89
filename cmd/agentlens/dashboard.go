package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/agentlens/agentlens"
	"github.com/agentlens/agentlens/transcript"
)

// --- agentlens dashboard ---

func newDashboardCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "dashboard",
		Short: "One-screen summary of the fleet",
		RunE:  runDashboard,
	}
}

func runDashboard(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	var (
		agentTotal    int
		providerTotal int
		serverTotal   int
		runningTotal  int
		pendingTotal  int
		running       []*agentlens.Task
		pending       []*agentlens.Approval
	)

	// Totals come from the list envelope, so a one-row page is enough for
	// the counters.
	probe := agentlens.ListOptions{Limit: 1}

	g, ctx := errgroup.WithContext(cmd.Context())
	g.Go(func() error {
		var err error
		_, agentTotal, err = client.Agents.List(ctx, agentlens.AgentListParams{ListOptions: probe})
		return err
	})
	g.Go(func() error {
		var err error
		_, providerTotal, err = client.Providers.List(ctx, agentlens.ProviderListParams{ListOptions: probe})
		return err
	})
	g.Go(func() error {
		var err error
		_, serverTotal, err = client.MCP.List(ctx, agentlens.MCPServerListParams{ListOptions: probe})
		return err
	})
	g.Go(func() error {
		var err error
		running, runningTotal, err = client.Tasks.List(ctx, agentlens.TaskListParams{
			Status:      agentlens.TaskStatusRunning,
			ListOptions: agentlens.ListOptions{Limit: 5},
		})
		return err
	})
	g.Go(func() error {
		var err error
		pending, pendingTotal, err = client.Approvals.List(ctx, agentlens.ApprovalListParams{
			Status:      agentlens.ApprovalStatusPending,
			ListOptions: agentlens.ListOptions{Limit: 5},
		})
		return err
	})
	if err := g.Wait(); err != nil {
		return err
	}

	fmt.Printf("Agents:             %s\n", humanize.Comma(int64(agentTotal)))
	fmt.Printf("Providers:          %s\n", humanize.Comma(int64(providerTotal)))
	fmt.Printf("MCP servers:        %s\n", humanize.Comma(int64(serverTotal)))
	fmt.Printf("Running tasks:      %s\n", humanize.Comma(int64(runningTotal)))
	fmt.Printf("Pending approvals:  %s\n", humanize.Comma(int64(pendingTotal)))

	if len(running) > 0 {
		fmt.Println()
		fmt.Println("Running tasks:")
		w := newTable()
		fmt.Fprintln(w, "  ID\tAGENT\tSPENT\tSTARTED")
		for _, t := range running {
			spent := "-"
			if t.Budget != nil {
				spent = fmt.Sprintf("$%.2f/$%.2f", t.Budget.SpentUSD, t.Budget.LimitUSD)
			}
			started := t.CreatedAt
			if t.StartedAt != nil {
				started = *t.StartedAt
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\n",
				shortID(t.ID), shortID(t.AgentID), spent, timeAgo(started))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if runningTotal > len(running) {
			fmt.Printf("  ... and %d more. See \"agentlens tasks list --status running\".\n", runningTotal-len(running))
		}
	}

	if len(pending) > 0 {
		fmt.Println()
		fmt.Println("Pending approvals:")
		w := newTable()
		fmt.Fprintln(w, "  ID\tTASK\tTOOL\tREASON\tREQUESTED")
		for _, a := range pending {
			reason := a.Reason
			if reason == "" {
				reason = "-"
			}
			fmt.Fprintf(w, "  %s\t%s\t%s\t%s\t%s\n",
				shortID(a.ID), shortID(a.TaskID), a.Tool,
				transcript.Truncate(reason, 32), timeAgo(a.RequestedAt))
		}
		if err := w.Flush(); err != nil {
			return err
		}
		fmt.Println("  Answer with \"agentlens approvals respond <id> --approve|--deny\".")
	}
	return nil
}
