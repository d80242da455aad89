package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens/manifest"
)

// --- agentlens apply ---

func newApplyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "apply",
		Short: "Apply resource manifests from YAML files",
		Long: `apply reads manifest documents (providers, MCP servers, agents) and
creates or updates the named resources so they match the files. Documents
are validated together before anything is sent, then applied with
providers first and agents last so references within the same apply
resolve.`,
		RunE: runApply,
	}
	cmd.Flags().StringSliceP("file", "f", nil, "manifest file to apply (repeatable)")
	_ = cmd.MarkFlagRequired("file")
	return cmd
}

func runApply(cmd *cobra.Command, args []string) error {
	files, _ := cmd.Flags().GetStringSlice("file")

	var manifests []manifest.Manifest
	for _, path := range files {
		docs, err := manifest.Load(path)
		if err != nil {
			return err
		}
		manifests = append(manifests, docs...)
	}

	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	results, applyErr := manifest.Apply(cmd.Context(), client, manifests)
	if len(results) > 0 {
		w := newTable()
		fmt.Fprintln(w, "KIND\tNAME\tACTION\tID")
		for _, res := range results {
			fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", res.Kind, res.Name, res.Action, shortID(res.ID))
		}
		if err := w.Flush(); err != nil {
			return err
		}
	}
	if applyErr != nil {
		return applyErr
	}

	fmt.Printf("\nApplied %d document(s).\n", len(results))
	return nil
}
