// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Atharv226/CampusVote/models"
)

var (
	ErrMissingToken = errors.New("missing bearer token")
	ErrInvalidToken = errors.New("invalid token")
)

// Claims carries the principal inside a signed token. The subject is the
// user ID.
type Claims struct {
	Role   string `json:"role"`
	Branch string `json:"branch,omitempty"`
	Year   int    `json:"year,omitempty"`
	jwt.RegisteredClaims
}

// SignPrincipal issues an HS256 token for p that expires after ttl.
func SignPrincipal(secret []byte, p models.Principal, ttl time.Duration) (string, error) {
	now := time.Now()
	claims := Claims{
		Role:   p.Role,
		Branch: p.Branch,
		Year:   p.Year,
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   p.UserID,
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ttl)),
		},
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString(secret)
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}
	return signed, nil
}

// ParsePrincipal verifies an HS256 token and returns its principal.
func ParsePrincipal(secret []byte, token string) (models.Principal, error) {
	if token == "" {
		return models.Principal{}, ErrMissingToken
	}

	var claims Claims
	_, err := jwt.ParseWithClaims(token, &claims, func(*jwt.Token) (any, error) {
		return secret, nil
	}, jwt.WithValidMethods([]string{jwt.SigningMethodHS256.Alg()}), jwt.WithExpirationRequired())
	if err != nil {
		return models.Principal{}, fmt.Errorf("%w: %w", ErrInvalidToken, err)
	}

	if claims.Subject == "" || claims.Role == "" {
		return models.Principal{}, fmt.Errorf("%w: subject and role are required", ErrInvalidToken)
	}

	return models.Principal{
		UserID: claims.Subject,
		Role:   claims.Role,
		Branch: claims.Branch,
		Year:   claims.Year,
	}, nil
}

// BearerToken extracts the token from an Authorization header, falling back
// to the token query parameter used by browser WebSocket clients.
func BearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
		return ""
	}
	return strings.TrimSpace(r.URL.Query().Get("token"))
}

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p models.Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// PrincipalFromContext returns the principal stored by WithPrincipal.
func PrincipalFromContext(ctx context.Context) (models.Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(models.Principal)
	return p, ok
}
