package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
	"github.com/agentlens/agentlens/transcript"
)

// --- agentlens approvals ---

func newApprovalsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "approvals",
		Short: "Review and answer tool approval requests",
	}
	cmd.AddCommand(newApprovalsListCmd(), newApprovalsRespondCmd())
	return cmd
}

func newApprovalsListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List approval requests (pending by default)",
		RunE:  runApprovalsList,
	}
	cmd.Flags().Bool("all", false, "include answered requests")
	cmd.Flags().String("task", "", "filter by task id")
	addListFlags(cmd)
	return cmd
}

func runApprovalsList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	params := agentlens.ApprovalListParams{ListOptions: listOptions(cmd)}
	if all, _ := cmd.Flags().GetBool("all"); !all {
		params.Status = agentlens.ApprovalStatusPending
	}
	if task, _ := cmd.Flags().GetString("task"); task != "" {
		id, err := parseID(task)
		if err != nil {
			return err
		}
		params.TaskID = &id
	}

	approvals, total, err := client.Approvals.List(cmd.Context(), params)
	if err != nil {
		return err
	}
	if len(approvals) == 0 {
		if params.Status == agentlens.ApprovalStatusPending {
			fmt.Println("Nothing pending.")
		} else {
			fmt.Println("No approval requests match.")
		}
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tTASK\tTOOL\tSTATUS\tREASON\tREQUESTED")
	for _, a := range approvals {
		reason := a.Reason
		if reason == "" {
			reason = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
			shortID(a.ID), shortID(a.TaskID), a.Tool, a.Status,
			transcript.Truncate(reason, 40), timeAgo(a.RequestedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	footer(len(approvals), total)
	return nil
}

func newApprovalsRespondCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "respond <id>",
		Short: "Approve or deny a pending request",
		Args:  cobra.ExactArgs(1),
		RunE:  runApprovalsRespond,
	}
	cmd.Flags().Bool("approve", false, "approve the tool call")
	cmd.Flags().Bool("deny", false, "deny the tool call")
	cmd.Flags().String("comment", "", "note recorded with the decision")
	return cmd
}

func runApprovalsRespond(cmd *cobra.Command, args []string) error {
	approve, _ := cmd.Flags().GetBool("approve")
	deny, _ := cmd.Flags().GetBool("deny")
	if approve == deny {
		return fmt.Errorf("pass exactly one of --approve or --deny")
	}

	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	comment, _ := cmd.Flags().GetString("comment")
	approval, err := client.Approvals.Respond(cmd.Context(), id, agentlens.ApprovalDecision{
		Approved: approve,
		Comment:  comment,
	})
	if err != nil {
		return err
	}

	fmt.Printf("%s %s for task %s.\n", verbFor(approval.Status), approval.Tool, shortID(approval.TaskID))
	return nil
}

func verbFor(status agentlens.ApprovalStatus) string {
	switch status {
	case agentlens.ApprovalStatusApproved:
		return "Approved"
	case agentlens.ApprovalStatusDenied:
		return "Denied"
	default:
		return "Recorded"
	}
}
