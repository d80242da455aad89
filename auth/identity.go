package auth

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// Identity is the subject described by an access token's claims.
type Identity struct {
	Subject   string
	Email     string
	Name      string
	Issuer    string
	IssuedAt  time.Time
	ExpiresAt time.Time
}

// Expired reports whether the token was expired at the given time. Tokens
// without an exp claim never expire.
func (id *Identity) Expired(now time.Time) bool {
	if id.ExpiresAt.IsZero() {
		return false
	}
	return now.After(id.ExpiresAt)
}

// TTL returns how long the token remains valid at the given time, zero when
// already expired or without an exp claim.
func (id *Identity) TTL(now time.Time) time.Duration {
	if id.ExpiresAt.IsZero() || now.After(id.ExpiresAt) {
		return 0
	}
	return id.ExpiresAt.Sub(now)
}

// ParseIdentity extracts identity claims from a JWT access token without
// verifying the signature. Signature verification is the platform's job; the
// console only renders who the token says it belongs to.
func ParseIdentity(token string) (*Identity, error) {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(token, claims); err != nil {
		return nil, fmt.Errorf("auth: %w: %v", ErrMalformedToken, err)
	}

	id := &Identity{}
	if sub, err := claims.GetSubject(); err == nil {
		id.Subject = sub
	}
	if iss, err := claims.GetIssuer(); err == nil {
		id.Issuer = iss
	}
	if iat, err := claims.GetIssuedAt(); err == nil && iat != nil {
		id.IssuedAt = iat.Time
	}
	if exp, err := claims.GetExpirationTime(); err == nil && exp != nil {
		id.ExpiresAt = exp.Time
	}
	if email, ok := claims["email"].(string); ok {
		id.Email = email
	}
	if name, ok := claims["name"].(string); ok {
		id.Name = name
	}

	return id, nil
}
