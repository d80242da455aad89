package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
	"github.com/agentlens/agentlens/transcript"
)

// --- agentlens conversations ---

func newConversationsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "conversations",
		Aliases: []string{"convs"},
		Short:   "Browse and export task conversations",
	}
	cmd.AddCommand(newConversationsListCmd(), newConversationsExportCmd())
	return cmd
}

func newConversationsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List conversations",
		RunE:  runConversationsList,
	}
	cmd.Flags().String("task", "", "filter by task id")
	addListFlags(cmd)
	return cmd
}

func runConversationsList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	params := agentlens.ConversationListParams{ListOptions: listOptions(cmd)}
	if task, _ := cmd.Flags().GetString("task"); task != "" {
		id, err := parseID(task)
		if err != nil {
			return err
		}
		params.TaskID = &id
	}

	convs, total, err := client.Conversations.List(cmd.Context(), params)
	if err != nil {
		return err
	}
	if len(convs) == 0 {
		fmt.Println("No conversations match.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tTASK\tTITLE\tMESSAGES\tUPDATED")
	for _, c := range convs {
		title := c.Title
		if title == "" {
			title = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%s\n",
			shortID(c.ID), shortID(c.TaskID), transcript.Truncate(title, 40),
			c.MessageCount, timeAgo(c.UpdatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	footer(len(convs), total)
	return nil
}

func newConversationsExportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <id>",
		Short: "Export a conversation as markdown, HTML, or text",
		Args:  cobra.ExactArgs(1),
		RunE:  runConversationsExport,
	}
	cmd.Flags().String("format", "markdown", "output format: markdown, html, or text")
	cmd.Flags().StringP("output", "o", "", "write to a file instead of stdout")
	return cmd
}

func runConversationsExport(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	conv, err := client.Conversations.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	messages, err := fetchAllMessages(cmd.Context(), client, id)
	if err != nil {
		return err
	}

	var out string
	format, _ := cmd.Flags().GetString("format")
	switch format {
	case "markdown", "md":
		out = transcript.Markdown(conv, messages)
	case "html":
		out, err = transcript.HTML(conv, messages)
		if err != nil {
			return err
		}
	case "text", "txt":
		out = transcript.Text(conv, messages)
	default:
		return fmt.Errorf("unknown format %q: want markdown, html, or text", format)
	}

	path, _ := cmd.Flags().GetString("output")
	if path == "" {
		fmt.Print(out)
		return nil
	}
	if err := os.WriteFile(path, []byte(out), 0o644); err != nil {
		return err
	}
	fmt.Printf("Wrote %d message(s) to %s.\n", len(messages), path)
	return nil
}

// fetchAllMessages pages through a conversation until every message is in
// hand, so exports are never truncated.
func fetchAllMessages(ctx context.Context, client *agentlens.Client, id uuid.UUID) ([]*agentlens.Message, error) {
	var all []*agentlens.Message
	opts := agentlens.ListOptions{Limit: agentlens.MaxListLimit}
	for {
		page, total, err := client.Conversations.Messages(ctx, id, opts)
		if err != nil {
			return nil, err
		}
		all = append(all, page...)
		if len(page) == 0 || len(all) >= total {
			return all, nil
		}
		opts.Offset = len(all)
	}
}
