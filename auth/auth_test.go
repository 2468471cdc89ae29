// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package auth

import (
	"context"
	"errors"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/Atharv226/CampusVote/models"
)

var testSecret = []byte("test-secret")

func TestSignAndParsePrincipal(t *testing.T) {
	tests := []struct {
		name string
		p    models.Principal
	}{
		{"voter", models.Principal{UserID: "u1", Role: models.RoleVoter, Branch: "CSE", Year: 3}},
		{"admin", models.Principal{UserID: "a1", Role: models.RoleAdmin}},
		{"candidate", models.Principal{UserID: "c1", Role: models.RoleCandidate, Branch: "ECE", Year: 4}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			token, err := SignPrincipal(testSecret, tt.p, time.Hour)
			if err != nil {
				t.Fatalf("SignPrincipal() error = %v", err)
			}

			got, err := ParsePrincipal(testSecret, token)
			if err != nil {
				t.Fatalf("ParsePrincipal() error = %v", err)
			}
			if got != tt.p {
				t.Errorf("ParsePrincipal() = %+v, want %+v", got, tt.p)
			}
		})
	}
}

func TestParsePrincipalRejects(t *testing.T) {
	valid, _ := SignPrincipal(testSecret, models.Principal{UserID: "u1", Role: models.RoleVoter}, time.Hour)
	expired, _ := SignPrincipal(testSecret, models.Principal{UserID: "u1", Role: models.RoleVoter}, -time.Minute)
	noRole, _ := SignPrincipal(testSecret, models.Principal{UserID: "u1"}, time.Hour)
	none, _ := jwt.NewWithClaims(jwt.SigningMethodNone, jwt.MapClaims{"sub": "u1", "role": "admin"}).SignedString(jwt.UnsafeAllowNoneSignatureType)

	tests := []struct {
		name    string
		secret  []byte
		token   string
		wantErr error
	}{
		{"empty", testSecret, "", ErrMissingToken},
		{"garbage", testSecret, "not-a-token", ErrInvalidToken},
		{"wrong secret", []byte("other"), valid, ErrInvalidToken},
		{"expired", testSecret, expired, ErrInvalidToken},
		{"missing role", testSecret, noRole, ErrInvalidToken},
		{"alg none", testSecret, none, ErrInvalidToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParsePrincipal(tt.secret, tt.token)
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("ParsePrincipal() error = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestBearerToken(t *testing.T) {
	tests := []struct {
		name   string
		target string
		header string
		want   string
	}{
		{"header", "/ws", "Bearer abc", "abc"},
		{"query fallback", "/ws?token=xyz", "", "xyz"},
		{"header wins", "/ws?token=xyz", "Bearer abc", "abc"},
		{"wrong scheme", "/ws", "Basic abc", ""},
		{"none", "/ws", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := httptest.NewRequest("GET", tt.target, nil)
			if tt.header != "" {
				r.Header.Set("Authorization", tt.header)
			}
			if got := BearerToken(r); got != tt.want {
				t.Errorf("BearerToken() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestPrincipalContext(t *testing.T) {
	if _, ok := PrincipalFromContext(context.Background()); ok {
		t.Error("empty context should have no principal")
	}

	p := models.Principal{UserID: "u1", Role: models.RoleVoter}
	got, ok := PrincipalFromContext(WithPrincipal(context.Background(), p))
	if !ok || got != p {
		t.Errorf("PrincipalFromContext() = %+v, %v", got, ok)
	}
}
