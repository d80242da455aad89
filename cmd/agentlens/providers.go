package main

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
	"github.com/agentlens/agentlens/providercheck"
)

// --- agentlens providers ---

func newProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "Inspect LLM provider configs",
	}
	cmd.AddCommand(
		newProvidersListCmd(),
		newProvidersGetCmd(),
		newProvidersVerifyCmd(),
		newProvidersDeleteCmd(),
	)
	return cmd
}

func newProvidersListCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List provider configs",
		RunE:  runProvidersList,
	}
	cmd.Flags().String("kind", "", "filter by provider kind (anthropic, openai, openai_compatible)")
	addListFlags(cmd)
	return cmd
}

func runProvidersList(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}

	kind, _ := cmd.Flags().GetString("kind")
	providers, total, err := client.Providers.List(cmd.Context(), agentlens.ProviderListParams{
		Kind:        agentlens.ProviderKind(kind),
		ListOptions: listOptions(cmd),
	})
	if err != nil {
		return err
	}
	if len(providers) == 0 {
		fmt.Println("No provider configs.")
		return nil
	}

	w := newTable()
	fmt.Fprintln(w, "ID\tNAME\tKIND\tDEFAULT MODEL\tUPDATED")
	for _, p := range providers {
		model := p.DefaultModel
		if model == "" {
			model = "-"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			shortID(p.ID), p.Name, p.Kind, model, timeAgo(p.UpdatedAt))
	}
	if err := w.Flush(); err != nil {
		return err
	}
	footer(len(providers), total)
	return nil
}

func newProvidersGetCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "get <id>",
		Short: "Show one provider config",
		Args:  cobra.ExactArgs(1),
		RunE:  runProvidersGet,
	}
}

func runProvidersGet(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	p, err := client.Providers.Get(cmd.Context(), id)
	if err != nil {
		return err
	}

	fmt.Printf("Name:          %s\n", p.Name)
	fmt.Printf("ID:            %s\n", p.ID)
	fmt.Printf("Kind:          %s\n", p.Kind)
	if p.BaseURL != "" {
		fmt.Printf("Base URL:      %s\n", p.BaseURL)
	}
	if p.DefaultModel != "" {
		fmt.Printf("Default model: %s\n", p.DefaultModel)
	}
	fmt.Printf("Created:       %s\n", timeAgo(p.CreatedAt))
	fmt.Printf("Updated:       %s\n", timeAgo(p.UpdatedAt))
	return nil
}

func newProvidersVerifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify <id>",
		Short: "Check a provider credential with a live round trip",
		Long: `verify sends a one-token request to the provider using the stored
config and the key you pass. The API never returns stored keys, so the key
to test must be supplied with --api-key.`,
		Args: cobra.ExactArgs(1),
		RunE: runProvidersVerify,
	}
	cmd.Flags().String("api-key", "", "credential to test (required)")
	cmd.Flags().String("model", "", "model to test against (default from the config)")
	return cmd
}

func runProvidersVerify(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	apiKey, _ := cmd.Flags().GetString("api-key")
	if apiKey == "" {
		return fmt.Errorf("the API never returns stored keys; pass the key to test with --api-key")
	}

	p, err := client.Providers.Get(cmd.Context(), id)
	if err != nil {
		return err
	}
	p.APIKey = apiKey
	if model, _ := cmd.Flags().GetString("model"); model != "" {
		p.DefaultModel = model
	}

	res, err := providercheck.DefaultRegistry().Verify(cmd.Context(), *p)
	if err != nil {
		return err
	}
	if !res.OK {
		fmt.Printf("REJECTED  %s (%s): %s\n", p.Name, res.Model, res.Detail)
		return fmt.Errorf("provider rejected the credential")
	}
	fmt.Printf("OK  %s answered in %s (model %s)\n", p.Name, res.Latency.Round(time.Millisecond), res.Model)
	return nil
}

func newProvidersDeleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "delete <id>",
		Short: "Delete a provider config",
		Args:  cobra.ExactArgs(1),
		RunE:  runProvidersDelete,
	}
}

func runProvidersDelete(cmd *cobra.Command, args []string) error {
	client, err := newAPIClient(cmd)
	if err != nil {
		return err
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}

	if err := client.Providers.Delete(cmd.Context(), id); err != nil {
		return err
	}
	fmt.Printf("Deleted provider %s.\n", shortID(id))
	return nil
}
