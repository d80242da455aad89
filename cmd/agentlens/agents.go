package main

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
)

// --- agentlens agents ---

func newAgentsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "agents",
		Short: "Inspect agent definitions",
	}
	cmd.AddCommand(newAgentsListCmd(), newAgentsGetCmd(), newAgentsDeleteCmd())
	return cmd
}

func newAgentsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List agents",
		RunE:  runAgentsList,
	}
	addListFlags(cmd)
	return cmd
}

func runAgentsList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	agents, total, err := client.Agents.List(cmd.Context(), agentlens.AgentListParams{
		ListOptions: listOptions(cmd),
	})
	if err != nil {
		return err
	}
	if len(agents) == 0 {
		fmt.Println("No agents. Define one in a manifest and run \"agentlens apply -f <file>\".")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tMODEL\tSERVERS\tUPDATED")
	for _, a := range agents {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			shortID(a.ID), a.Name, a.Model, len(a.MCPServerIDs), timeAgo(a.UpdatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	footer(len(agents), total)
	return nil
}

func newAgentsGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one agent in full",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentsGet,
	}
}

func runAgentsGet(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	agent, err := client.Agents.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Name:           %s\n", agent.Name)
	fmt.Printf("ID:             %s\n", agent.ID)
	if agent.Description != "" {
		fmt.Printf("Description:    %s\n", agent.Description)
	}
	fmt.Printf("Model:          %s\n", agent.Model)
	fmt.Printf("Provider:       %s\n", agent.ProviderConfigID)
	if len(agent.MCPServerIDs) > 0 {
		ids := make([]string, len(agent.MCPServerIDs))
		for i, sid := range agent.MCPServerIDs {
			ids[i] = shortID(sid)
		}
		fmt.Printf("MCP servers:    %s\n", strings.Join(ids, ", "))
	}
	if agent.MaxIterations > 0 {
		fmt.Printf("Max iterations: %d\n", agent.MaxIterations)
	}
	fmt.Printf("Created:        %s\n", timeAgo(agent.CreatedAt))
	fmt.Printf("Updated:        %s\n", timeAgo(agent.UpdatedAt))
	fmt.Println()
	fmt.Println("System prompt:")
	fmt.Println(indent(agent.SystemPrompt, "  "))
	return nil
}

func newAgentsDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete an agent definition",
		Args:  cobra.ExactArgs(1),
		RunE:  runAgentsDelete,
	}
}

func runAgentsDelete(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := client.Agents.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted agent %s.\n", shortID(id))
	return nil
}
