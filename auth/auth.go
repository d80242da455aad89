// Package auth carries bearer tokens for the agentlens client and inspects
// the identity claims inside them.
//
// Identity flows (login, refresh, logout) belong to the platform's identity
// provider; this package only supplies tokens to requests and renders the
// claims of an already-issued access token.
package auth

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"
)

// Common errors
var (
	// ErrNoToken is returned when a token source has no token to offer
	ErrNoToken = errors.New("no token available")

	// ErrMalformedToken is returned when a token cannot be parsed as a JWT
	ErrMalformedToken = errors.New("malformed token")
)

// TokenSource supplies a bearer token per request.
// Compatible with agentlens.TokenSource.
type TokenSource interface {
	Token(ctx context.Context) (string, error)
}

// staticSource wraps a fixed token.
type staticSource string

func (s staticSource) Token(context.Context) (string, error) {
	if s == "" {
		return "", ErrNoToken
	}
	return string(s), nil
}

// Static returns a TokenSource that always yields the given token.
func Static(token string) TokenSource {
	return staticSource(token)
}

// envSource reads a token from an environment variable on every call.
type envSource string

func (s envSource) Token(context.Context) (string, error) {
	token := strings.TrimSpace(os.Getenv(string(s)))
	if token == "" {
		return "", fmt.Errorf("auth: %w: environment variable %s is empty", ErrNoToken, string(s))
	}
	return token, nil
}

// FromEnv returns a TokenSource that reads the named environment variable on
// every call.
func FromEnv(name string) TokenSource {
	return envSource(name)
}

// fileSource reads a token file on every call so rotated tokens are picked
// up without restarting.
type fileSource string

func (s fileSource) Token(context.Context) (string, error) {
	raw, err := os.ReadFile(string(s))
	if err != nil {
		return "", fmt.Errorf("auth: read token file: %w", err)
	}
	token := strings.TrimSpace(string(raw))
	if token == "" {
		return "", fmt.Errorf("auth: %w: token file %s is empty", ErrNoToken, string(s))
	}
	return token, nil
}

// FromFile returns a TokenSource that re-reads the file at path on every
// call.
func FromFile(path string) TokenSource {
	return fileSource(path)
}
