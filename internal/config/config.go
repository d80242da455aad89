// Package config reads and writes the CLI's file configuration.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"
)

// Environment variables that override both flags and file configuration.
const (
	EnvAPIURL = "AGENTLENS_API_URL"
	EnvToken  = "AGENTLENS_TOKEN"
)

// ErrNotFound is returned by Load when no config file exists. Commands fall
// back to flags and environment variables.
var ErrNotFound = errors.New("config file not found")

// Config is the top-level user configuration.
type Config struct {
	// APIURL is the root URL of the platform API.
	APIURL string `toml:"api_url"`

	// Token is a static bearer token. TokenFile takes precedence when both
	// are set.
	Token string `toml:"token,omitempty"`

	// TokenFile is a path to a file holding the bearer token, for
	// credentials that rotate outside the CLI.
	TokenFile string `toml:"token_file,omitempty"`

	Defaults Defaults `toml:"defaults"`
}

// Defaults holds default command settings.
type Defaults struct {
	// Limit is the default page size for list commands.
	Limit int `toml:"limit"`

	// RecordDB overrides where recorded events are stored.
	RecordDB string `toml:"record_db,omitempty"`
}

// Default returns the config template written by `agentlens config init`.
func Default() *Config {
	return &Config{
		APIURL: "http://localhost:8080",
		Defaults: Defaults{
			Limit: 50,
		},
	}
}

// Dir returns the path to ~/.config/agentlens.
func Dir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("config: cannot determine home directory: %w", err)
	}
	return filepath.Join(home, ".config", "agentlens"), nil
}

// Path returns the full path to the config file.
func Path() (string, error) {
	dir, err := Dir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, "config.toml"), nil
}

// Load reads config from ~/.config/agentlens/config.toml. A missing file is
// reported as ErrNotFound.
func Load() (*Config, error) {
	path, err := Path()
	if err != nil {
		return nil, err
	}

	cfg := &Config{}
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("config: %w: %s", ErrNotFound, path)
		}
		return nil, fmt.Errorf("config: failed to parse %s: %w", path, err)
	}

	return cfg, nil
}

// Save writes config to ~/.config/agentlens/config.toml, creating the
// directory if needed. The file holds a credential, so it is written 0600.
func Save(cfg *Config) error {
	dir, err := Dir()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("config: failed to create directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "config.toml")
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("config: failed to create %s: %w", path, err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(cfg); err != nil {
		return fmt.Errorf("config: failed to write %s: %w", path, err)
	}

	return nil
}

// ResolvedAPIURL returns the API URL with overrides applied: environment
// beats flag beats file.
func (c *Config) ResolvedAPIURL(flag string) string {
	if env := os.Getenv(EnvAPIURL); env != "" {
		return env
	}
	if flag != "" {
		return flag
	}
	return c.APIURL
}

// ResolvedToken returns the static bearer token with overrides applied:
// environment beats flag beats file. It is empty when token_file is the
// credential source.
func (c *Config) ResolvedToken(flag string) string {
	if env := os.Getenv(EnvToken); env != "" {
		return env
	}
	if flag != "" {
		return flag
	}
	return c.Token
}
