package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestSaveLoad_RoundTrip(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	want := &Config{
		APIURL:    "https://platform.example.com",
		Token:     "tok-123",
		TokenFile: "/run/secrets/agentlens",
		Defaults:  Defaults{Limit: 25, RecordDB: "/tmp/events.db"},
	}
	if err := Save(want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	path, err := Path()
	if err != nil {
		t.Fatalf("Path() error = %v", err)
	}
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("Stat() error = %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config file mode = %o, want 600", perm)
	}

	got, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if *got != *want {
		t.Errorf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoad_Missing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	_, err := Load()
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("Load() error = %v, want ErrNotFound", err)
	}
}

func TestLoad_BadTOML(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)

	dir := filepath.Join(home, ".config", "agentlens")
	if err := os.MkdirAll(dir, 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "config.toml"), []byte("api_url = [broken"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(); err == nil {
		t.Error("Load() accepted invalid TOML")
	}
}

func TestResolvedAPIURL(t *testing.T) {
	cfg := &Config{APIURL: "https://from-file"}

	t.Setenv(EnvAPIURL, "")
	if got := cfg.ResolvedAPIURL(""); got != "https://from-file" {
		t.Errorf("file value: got %q", got)
	}
	if got := cfg.ResolvedAPIURL("https://from-flag"); got != "https://from-flag" {
		t.Errorf("flag override: got %q", got)
	}

	t.Setenv(EnvAPIURL, "https://from-env")
	if got := cfg.ResolvedAPIURL("https://from-flag"); got != "https://from-env" {
		t.Errorf("env override: got %q", got)
	}
}

func TestResolvedToken(t *testing.T) {
	cfg := &Config{Token: "file-token"}

	t.Setenv(EnvToken, "")
	if got := cfg.ResolvedToken(""); got != "file-token" {
		t.Errorf("file value: got %q", got)
	}
	if got := cfg.ResolvedToken("flag-token"); got != "flag-token" {
		t.Errorf("flag override: got %q", got)
	}

	t.Setenv(EnvToken, "env-token")
	if got := cfg.ResolvedToken("flag-token"); got != "env-token" {
		t.Errorf("env override: got %q", got)
	}
}
