package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
)

// --- agentlens mcp ---

func newMCPCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mcp",
		Short: "Inspect MCP tool servers",
	}
	cmd.AddCommand(newMCPListCmd(), newMCPGetCmd(), newMCPInstancesCmd())
	return cmd
}

func newMCPListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered MCP servers",
		RunE:  runMCPList,
	}
	addListFlags(cmd)
	return cmd
}

func runMCPList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	servers, total, err := client.MCP.List(cmd.Context(), agentlens.MCPServerListParams{
		ListOptions: listOptions(cmd),
	})
	if err != nil {
		return err
	}
	if len(servers) == 0 {
		fmt.Println("No MCP servers registered.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tTRANSPORT\tTARGET\tUPDATED")
	for _, s := range servers {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(s.ID), s.Name, s.Transport, serverTarget(s), timeAgo(s.UpdatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	footer(len(servers), total)
	return nil
}

// serverTarget is the column that says where the server runs: the command
// for stdio servers, the URL otherwise.
func serverTarget(s *agentlens.MCPServer) string {
	if s.Transport == agentlens.MCPTransportStdio {
		return s.Command
	}
	return s.URL
}

func newMCPGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one MCP server",
		Args:  cobra.ExactArgs(1),
		RunE:  runMCPGet,
	}
}

func runMCPGet(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	s, err := client.MCP.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Name:      %s\n", s.Name)
	fmt.Printf("ID:        %s\n", s.ID)
	fmt.Printf("Transport: %s\n", s.Transport)
	if s.Command != "" {
		fmt.Printf("Command:   %s\n", s.Command)
	}
	if s.URL != "" {
		fmt.Printf("URL:       %s\n", s.URL)
	}
	if len(s.Env) > 0 {
		// Values may be secrets; show only which variables are set.
		keys := make([]string, 0, len(s.Env))
		for k := range s.Env {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		fmt.Printf("Env:       %s\n", strings.Join(keys, ", "))
	}
	fmt.Printf("Created:   %s\n", timeAgo(s.CreatedAt))
	fmt.Printf("Updated:   %s\n", timeAgo(s.UpdatedAt))
	return nil
}

func newMCPInstancesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "instances <server-id>",
		Short: "List live instances of an MCP server",
		Args:  cobra.ExactArgs(1),
		RunE:  runMCPInstances,
	}
}

func runMCPInstances(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	instances, err := client.MCP.ListInstances(cmd.Context(), id)
	if err != nil {
		return err
	}
	if len(instances) == 0 {
		fmt.Println("No live instances for this server.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tSTATUS\tTOOLS\tLAST SEEN")
	for _, in := range instances {
		tools := strings.Join(in.Tools, ", ")
		if tools == "" {
			tools = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\n",
			shortID(in.ID), in.Status, tools, timeAgo(in.LastSeenAt))
	}
	return w.Flush()
}
