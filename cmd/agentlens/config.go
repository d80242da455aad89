package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"

	"github.com/agentlens/agentlens/internal/config"
)

// --- agentlens config ---

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage the config file",
	}
	cmd.AddCommand(newConfigInitCmd(), newConfigShowCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Create the config file with defaults",
		RunE:  runConfigInit,
	}
	cmd.Flags().Bool("force", false, "overwrite an existing file")
	return cmd
}

func runConfigInit(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	if force, _ := cmd.Flags().GetBool("force"); !force {
		if _, err := os.Stat(path); err == nil {
			return fmt.Errorf("%s already exists; pass --force to overwrite", path)
		}
	}

	if err := config.Save(config.Default()); err != nil {
		return err
	}
	fmt.Printf("Wrote %s.\n", path)
	fmt.Println("Edit it to point at your agentlens API, or export AGENTLENS_API_URL and AGENTLENS_TOKEN.")
	return nil
}

func newConfigShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Print the effective config",
		RunE:  runConfigShow,
	}
}

func runConfigShow(cmd *cobra.Command, args []string) error {
	path, err := config.Path()
	if err != nil {
		return err
	}

	cfg, err := config.Load()
	switch {
	case errors.Is(err, config.ErrNotFound):
		fmt.Printf("# %s (not created yet; showing defaults)\n", path)
		cfg = config.Default()
	case err != nil:
		return err
	default:
		fmt.Printf("# %s\n", path)
	}

	// Never echo the credential itself.
	masked := *cfg
	if masked.Token != "" {
		masked.Token = "********"
	}
	return toml.NewEncoder(os.Stdout).Encode(masked)
}
