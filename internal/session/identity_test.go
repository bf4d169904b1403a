package session

import (
	"encoding/base64"
	"errors"
	"testing"

	"github.com/golang-jwt/jwt/v5"
)

// signToken builds a signed HS256 token with the given claims. The
// signature is irrelevant to the resolver but keeps the shape realistic.
func signToken(t *testing.T, claims jwt.MapClaims) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		t.Fatalf("signing test token: %v", err)
	}
	return tok
}

func TestUserIDPrimaryClaim(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"userId": "u1", "sub": "other"})

	got, err := UserID(tok)
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if got != "u1" {
		t.Errorf("UserID: got %q, want u1", got)
	}
}

func TestUserIDSubFallback(t *testing.T) {
	tok := signToken(t, jwt.MapClaims{"sub": "u2"})

	got, err := UserID(tok)
	if err != nil {
		t.Fatalf("UserID failed: %v", err)
	}
	if got != "u2" {
		t.Errorf("UserID: got %q, want u2", got)
	}
}

func TestUserIDMalformed(t *testing.T) {
	notJSON := base64.RawURLEncoding.EncodeToString([]byte("not json"))

	tests := []struct {
		name string
		tok  string
		want error
	}{
		{"empty", "", ErrMalformedToken},
		{"whitespace", "   ", ErrMalformedToken},
		{"single segment", "justonesegment", ErrMalformedToken},
		{"two segments", "header.payload", ErrMalformedToken},
		{"payload not json", "eyJhbGciOiJIUzI1NiJ9." + notJSON + ".sig", ErrMalformedToken},
		{"payload not base64", "header.!!!.sig", ErrMalformedToken},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := UserID(tt.tok)
			if !errors.Is(err, tt.want) {
				t.Errorf("UserID(%q): got error %v, want %v", tt.tok, err, tt.want)
			}
			if got != "" {
				t.Errorf("UserID(%q): got %q, want empty", tt.tok, got)
			}
		})
	}
}

func TestUserIDNoUsableClaim(t *testing.T) {
	tests := []struct {
		name   string
		claims jwt.MapClaims
	}{
		{"no identity claims", jwt.MapClaims{"exp": 4102444800}},
		{"empty userId and sub", jwt.MapClaims{"userId": "", "sub": ""}},
		{"non-string userId", jwt.MapClaims{"userId": 42}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tok := signToken(t, tt.claims)
			got, err := UserID(tok)
			if !errors.Is(err, ErrNoUserClaim) {
				t.Errorf("UserID: got error %v, want ErrNoUserClaim", err)
			}
			if got != "" {
				t.Errorf("UserID: got %q, want empty", got)
			}
		})
	}
}
