// Command agentlens is the terminal console for an agentlens control plane:
// it lists and inspects agents, providers, MCP servers, tasks, and
// conversations, watches live task event streams, and applies declarative
// resource manifests.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens"
	"github.com/agentlens/agentlens/auth"
	"github.com/agentlens/agentlens/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "agentlens",
		Short: "Console for an agentlens control plane",
		Long: `agentlens talks to an agentlens API server: inspect agents, providers,
and MCP servers, submit and steer tasks, follow their event streams live,
export conversations, and apply declarative YAML manifests.

Connection settings come from ~/.config/agentlens/config.toml, the
--api-url and --token flags, or the AGENTLENS_API_URL and AGENTLENS_TOKEN
environment variables. Environment wins over flags, flags win over the
file. Run "agentlens config init" to create the file.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().String("api-url", "", "base URL of the agentlens API")
	root.PersistentFlags().String("token", "", "bearer token for the agentlens API")

	root.AddCommand(
		newAgentsCmd(),
		newProvidersCmd(),
		newMCPCmd(),
		newTasksCmd(),
		newConversationsCmd(),
		newApprovalsCmd(),
		newApplyCmd(),
		newAuthCmd(),
		newDashboardCmd(),
		newConfigCmd(),
	)
	return root
}

// loadConfig reads the config file, falling back to defaults when the file
// does not exist yet so flag- and env-only usage works.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load()
	if errors.Is(err, config.ErrNotFound) {
		return config.Default(), nil
	}
	return cfg, err
}

// resolveEndpoint applies the connection precedence rules: environment
// variables beat flags, flags beat the config file.
func resolveEndpoint(cmd *cobra.Command) (apiURL, token string, cfg *config.Config, err error) {
	cfg, err = loadConfig()
	if err != nil {
		return "", "", nil, err
	}

	flagURL, _ := cmd.Flags().GetString("api-url")
	flagToken, _ := cmd.Flags().GetString("token")

	apiURL = cfg.ResolvedAPIURL(flagURL)
	if apiURL == "" {
		return "", "", nil, fmt.Errorf("no API URL configured: set %s, pass --api-url, or run \"agentlens config init\"", config.EnvAPIURL)
	}
	return apiURL, cfg.ResolvedToken(flagToken), cfg, nil
}

// newAPIClient builds the API client for a command invocation.
func newAPIClient(cmd *cobra.Command) (*agentlens.Client, error) {
	apiURL, token, cfg, err := resolveEndpoint(cmd)
	if err != nil {
		return nil, err
	}

	clientCfg := agentlens.Config{
		BaseURL: apiURL,
		Token:   token,
	}
	if token == "" && cfg.TokenFile != "" {
		clientCfg.TokenSource = auth.FromFile(cfg.TokenFile)
	}
	return agentlens.NewClient(clientCfg)
}

// addListFlags registers the paging flags shared by list commands.
func addListFlags(cmd *cobra.Command) {
	cmd.Flags().Int("limit", 0, "maximum rows to fetch (default from config)")
	cmd.Flags().Int("offset", 0, "rows to skip")
}

// listOptions reads the paging flags, falling back to the configured
// default page size.
func listOptions(cmd *cobra.Command) agentlens.ListOptions {
	var opts agentlens.ListOptions
	if n, err := cmd.Flags().GetInt("limit"); err == nil && n > 0 {
		opts.Limit = n
	} else if cfg, err := loadConfig(); err == nil && cfg.Defaults.Limit > 0 {
		opts.Limit = cfg.Defaults.Limit
	}
	if n, err := cmd.Flags().GetInt("offset"); err == nil && n > 0 {
		opts.Offset = n
	}
	return opts
}

// parseID parses a UUID argument with a friendlier message than the raw
// parse error.
func parseID(arg string) (uuid.UUID, error) {
	id, err := uuid.Parse(arg)
	if err != nil {
		return uuid.Nil, fmt.Errorf("invalid id %q: expected a UUID", arg)
	}
	return id, nil
}

func shortID(id uuid.UUID) string {
	return id.String()[:8]
}

// newTable returns a tab-aligned writer for list output.
func newTable() *tabwriter.Writer {
	return tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
}

// timeAgo renders a timestamp relative to now, or a dash for the zero time.
func timeAgo(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return humanize.Time(t)
}

// footer prints the paging hint under a table when the page was partial.
func footer(shown, total int) {
	if total > shown {
		fmt.Printf("\nShowing %d of %d. Use --limit and --offset to page.\n", shown, total)
	}
}

// indent prefixes every line of s, for printing multi-line fields such as
// prompts under a label.
func indent(s, prefix string) string {
	lines := strings.Split(strings.TrimRight(s, "\n"), "\n")
	for i, line := range lines {
		lines[i] = prefix + line
	}
	return strings.Join(lines, "\n")
}
