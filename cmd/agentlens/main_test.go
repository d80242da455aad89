package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens/internal/config"
	"github.com/agentlens/agentlens/stream"
)

func TestRootCommandWiring(t *testing.T) {
	root := newRootCmd()

	want := []string{
		"agents", "providers", "mcp", "tasks", "conversations",
		"approvals", "apply", "auth", "dashboard", "config",
	}
	have := map[string]bool{}
	for _, sub := range root.Commands() {
		have[sub.Name()] = true
	}
	for _, name := range want {
		if !have[name] {
			t.Errorf("root command is missing subcommand %q", name)
		}
	}

	for _, flag := range []string{"api-url", "token"} {
		if root.PersistentFlags().Lookup(flag) == nil {
			t.Errorf("root command is missing persistent flag --%s", flag)
		}
	}
}

func TestParseID(t *testing.T) {
	id := uuid.New()
	got, err := parseID(id.String())
	if err != nil {
		t.Fatalf("parseID(%q) error: %v", id, err)
	}
	if got != id {
		t.Fatalf("parseID returned %s, want %s", got, id)
	}

	if _, err := parseID("not-a-uuid"); err == nil {
		t.Fatal("parseID accepted a malformed id")
	}
}

func TestShortID(t *testing.T) {
	id := uuid.MustParse("0d1f3e6a-1111-2222-3333-444455556666")
	if got := shortID(id); got != "0d1f3e6a" {
		t.Fatalf("shortID = %q, want %q", got, "0d1f3e6a")
	}
}

func TestIndent(t *testing.T) {
	got := indent("one\ntwo\n", "  ")
	want := "  one\n  two"
	if got != want {
		t.Fatalf("indent = %q, want %q", got, want)
	}
}

func TestListOptions(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cmd := &cobra.Command{}
	addListFlags(cmd)

	// No flags, no config file: the built-in default page size applies.
	opts := listOptions(cmd)
	if opts.Limit != config.Default().Defaults.Limit {
		t.Fatalf("default limit = %d, want %d", opts.Limit, config.Default().Defaults.Limit)
	}
	if opts.Offset != 0 {
		t.Fatalf("default offset = %d, want 0", opts.Offset)
	}

	// A config file changes the default.
	if err := config.Save(&config.Config{APIURL: "http://x", Defaults: config.Defaults{Limit: 7}}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if opts := listOptions(cmd); opts.Limit != 7 {
		t.Fatalf("config limit = %d, want 7", opts.Limit)
	}

	// Flags beat the config file.
	if err := cmd.Flags().Set("limit", "3"); err != nil {
		t.Fatalf("set limit: %v", err)
	}
	if err := cmd.Flags().Set("offset", "12"); err != nil {
		t.Fatalf("set offset: %v", err)
	}
	opts = listOptions(cmd)
	if opts.Limit != 3 || opts.Offset != 12 {
		t.Fatalf("flag options = %+v, want limit 3 offset 12", opts)
	}
}

func TestTokenWithSource(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv(config.EnvToken, "")

	cmd := &cobra.Command{}
	cmd.SetContext(context.Background())
	cmd.Flags().String("token", "", "")

	// Nothing configured.
	token, _, err := tokenWithSource(cmd)
	if err != nil {
		t.Fatalf("tokenWithSource: %v", err)
	}
	if token != "" {
		t.Fatalf("token = %q, want empty", token)
	}

	// Token file, lowest precedence.
	tokenPath := filepath.Join(home, "token")
	if err := os.WriteFile(tokenPath, []byte("from-file\n"), 0o600); err != nil {
		t.Fatalf("write token file: %v", err)
	}
	if err := config.Save(&config.Config{APIURL: "http://x", TokenFile: tokenPath}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	token, source, err := tokenWithSource(cmd)
	if err != nil {
		t.Fatalf("tokenWithSource: %v", err)
	}
	if token != "from-file" {
		t.Fatalf("token = %q, want %q", token, "from-file")
	}
	if source == "" {
		t.Fatal("source is empty")
	}

	// Inline config token beats the token file.
	if err := config.Save(&config.Config{APIURL: "http://x", Token: "from-config", TokenFile: tokenPath}); err != nil {
		t.Fatalf("Save: %v", err)
	}
	if token, _, _ = tokenWithSource(cmd); token != "from-config" {
		t.Fatalf("token = %q, want %q", token, "from-config")
	}

	// The flag beats the file.
	if err := cmd.Flags().Set("token", "from-flag"); err != nil {
		t.Fatalf("set token: %v", err)
	}
	if token, _, _ = tokenWithSource(cmd); token != "from-flag" {
		t.Fatalf("token = %q, want %q", token, "from-flag")
	}

	// The environment beats everything.
	t.Setenv(config.EnvToken, "from-env")
	if token, _, _ = tokenWithSource(cmd); token != "from-env" {
		t.Fatalf("token = %q, want %q", token, "from-env")
	}
}

func TestEventDetail(t *testing.T) {
	ev := stream.Event{
		Type: stream.EventToolCallStarted,
		Data: map[string]any{"tool": "search", "iteration": 3},
	}
	if got := eventDetail(ev); got != "tool=search" {
		t.Fatalf("eventDetail = %q, want %q", got, "tool=search")
	}

	ev = stream.Event{Type: stream.EventMessage, Data: "a plain payload"}
	if got := eventDetail(ev); got != "a plain payload" {
		t.Fatalf("eventDetail = %q, want %q", got, "a plain payload")
	}

	ev = stream.Event{Type: stream.EventConnected, Data: nil}
	if got := eventDetail(ev); got != "" {
		t.Fatalf("eventDetail = %q, want empty", got)
	}
}

func TestTimeAgo(t *testing.T) {
	if got := timeAgo(time.Time{}); got != "-" {
		t.Fatalf("timeAgo(zero) = %q, want %q", got, "-")
	}
	if got := timeAgo(time.Now().Add(-time.Minute)); got == "-" || got == "" {
		t.Fatalf("timeAgo(recent) = %q, want a relative phrase", got)
	}
}
