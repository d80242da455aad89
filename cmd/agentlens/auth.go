package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens/auth"
	"github.com/agentlens/agentlens/internal/config"
)

// --- agentlens auth ---

func newAuthCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "auth",
		Short: "Inspect the configured credential",
	}
	cmd.AddCommand(newAuthStatusCmd())
	return cmd
}

func newAuthStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status",
		Short: "Show where the token comes from and what it claims",
		RunE:  runAuthStatus,
	}
}

func runAuthStatus(cmd *cobra.Command, args []string) error {
	token, source, err := tokenWithSource(cmd)
	if err != nil {
		return err
	}
	if token == "" {
		fmt.Printf("No token configured. Set %s, pass --token, or run \"agentlens config init\".\n", config.EnvToken)
		return nil
	}

	fmt.Printf("Token:   set, from %s\n", source)

	identity, err := auth.ParseIdentity(token)
	if err != nil {
		fmt.Println("Claims:  none (the token is not a JWT)")
		return nil
	}

	if identity.Subject != "" {
		fmt.Printf("Subject: %s\n", identity.Subject)
	}
	if identity.Name != "" {
		fmt.Printf("Name:    %s\n", identity.Name)
	}
	if identity.Email != "" {
		fmt.Printf("Email:   %s\n", identity.Email)
	}
	if identity.Issuer != "" {
		fmt.Printf("Issuer:  %s\n", identity.Issuer)
	}
	if !identity.IssuedAt.IsZero() {
		fmt.Printf("Issued:  %s\n", humanize.Time(identity.IssuedAt))
	}

	now := time.Now()
	switch {
	case identity.ExpiresAt.IsZero():
		fmt.Println("Expires: never (no exp claim)")
	case identity.Expired(now):
		fmt.Printf("Expires: EXPIRED %s\n", humanize.Time(identity.ExpiresAt))
	default:
		fmt.Printf("Expires: %s\n", humanize.Time(identity.ExpiresAt))
	}
	return nil
}

// tokenWithSource resolves the token the way the client would and reports
// where it came from, in precedence order: environment, flag, config file.
func tokenWithSource(cmd *cobra.Command) (token, source string, err error) {
	if v := os.Getenv(config.EnvToken); v != "" {
		return v, "the " + config.EnvToken + " environment variable", nil
	}
	if v, _ := cmd.Flags().GetString("token"); v != "" {
		return v, "the --token flag", nil
	}

	cfg, err := loadConfig()
	if err != nil {
		return "", "", err
	}
	if cfg.Token != "" {
		return cfg.Token, "the config file", nil
	}
	if cfg.TokenFile != "" {
		tok, err := auth.FromFile(cfg.TokenFile).Token(cmd.Context())
		if err != nil {
			return "", "", err
		}
		return tok, "the token file " + cfg.TokenFile, nil
	}
	return "", "", nil
}
