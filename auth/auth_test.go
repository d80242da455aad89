package auth

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestStatic(t *testing.T) {
	token, err := Static("abc123").Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "abc123" {
		t.Errorf("Token() = %q", token)
	}

	if _, err := Static("").Token(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() error = %v, want %v", err, ErrNoToken)
	}
}

func TestFromEnv(t *testing.T) {
	t.Setenv("AGENTLENS_TEST_TOKEN", " tok-1\n")

	token, err := FromEnv("AGENTLENS_TEST_TOKEN").Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "tok-1" {
		t.Errorf("Token() = %q, want whitespace trimmed", token)
	}

	t.Setenv("AGENTLENS_TEST_TOKEN", "")
	if _, err := FromEnv("AGENTLENS_TEST_TOKEN").Token(context.Background()); !errors.Is(err, ErrNoToken) {
		t.Errorf("Token() error = %v, want %v", err, ErrNoToken)
	}
}

func TestFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")
	if err := os.WriteFile(path, []byte("tok-1\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	src := FromFile(path)
	token, err := src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "tok-1" {
		t.Errorf("Token() = %q", token)
	}

	// Rotation is picked up on the next call.
	if err := os.WriteFile(path, []byte("tok-2\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	token, err = src.Token(context.Background())
	if err != nil {
		t.Fatalf("Token() error = %v", err)
	}
	if token != "tok-2" {
		t.Errorf("Token() = %q, want the rotated token", token)
	}

	if _, err := FromFile(filepath.Join(t.TempDir(), "missing")).Token(context.Background()); err == nil {
		t.Error("Token() on a missing file should error")
	}
}

// makeToken builds an unsigned JWT from the given claims.
func makeToken(t *testing.T, claims map[string]any) string {
	t.Helper()
	header := base64.RawURLEncoding.EncodeToString([]byte(`{"alg":"HS256","typ":"JWT"}`))
	payload, err := json.Marshal(claims)
	if err != nil {
		t.Fatalf("marshal claims: %v", err)
	}
	return header + "." + base64.RawURLEncoding.EncodeToString(payload) + ".c2ln"
}

func TestParseIdentity(t *testing.T) {
	issued := time.Now().Add(-time.Hour).Unix()
	expires := time.Now().Add(time.Hour).Unix()
	token := makeToken(t, map[string]any{
		"sub":   "user-42",
		"iss":   "https://id.example.com",
		"email": "ops@example.com",
		"name":  "Ops Person",
		"iat":   issued,
		"exp":   expires,
	})

	id, err := ParseIdentity(token)
	if err != nil {
		t.Fatalf("ParseIdentity() error = %v", err)
	}
	if id.Subject != "user-42" {
		t.Errorf("Subject = %q", id.Subject)
	}
	if id.Email != "ops@example.com" {
		t.Errorf("Email = %q", id.Email)
	}
	if id.Name != "Ops Person" {
		t.Errorf("Name = %q", id.Name)
	}
	if id.Issuer != "https://id.example.com" {
		t.Errorf("Issuer = %q", id.Issuer)
	}
	if id.ExpiresAt.Unix() != expires {
		t.Errorf("ExpiresAt = %v", id.ExpiresAt)
	}

	now := time.Now()
	if id.Expired(now) {
		t.Error("Expired() = true for a live token")
	}
	if ttl := id.TTL(now); ttl <= 0 || ttl > time.Hour {
		t.Errorf("TTL() = %v", ttl)
	}
}

func TestParseIdentity_Expired(t *testing.T) {
	token := makeToken(t, map[string]any{
		"sub": "user-42",
		"exp": time.Now().Add(-time.Minute).Unix(),
	})

	id, err := ParseIdentity(token)
	if err != nil {
		t.Fatalf("ParseIdentity() error = %v", err)
	}
	if !id.Expired(time.Now()) {
		t.Error("Expired() = false for an expired token")
	}
	if ttl := id.TTL(time.Now()); ttl != 0 {
		t.Errorf("TTL() = %v, want 0", ttl)
	}
}

func TestParseIdentity_NoExpiry(t *testing.T) {
	id, err := ParseIdentity(makeToken(t, map[string]any{"sub": "svc"}))
	if err != nil {
		t.Fatalf("ParseIdentity() error = %v", err)
	}
	if id.Expired(time.Now()) {
		t.Error("Expired() = true for a token without exp")
	}
}

func TestParseIdentity_Malformed(t *testing.T) {
	for _, token := range []string{"", "not-a-jwt", "a.b", "!!!.???.###"} {
		if _, err := ParseIdentity(token); !errors.Is(err, ErrMalformedToken) {
			t.Errorf("ParseIdentity(%q) error = %v, want %v", token, err, ErrMalformedToken)
		}
	}
}
