// Package session derives the current user identity from the stored token.
package session

import (
	"errors"
	"fmt"
	"strings"

	"github.com/golang-jwt/jwt/v5"
)

// Sentinel errors for identity resolution.
var (
	// ErrMalformedToken means the token could not be decoded at all.
	ErrMalformedToken = errors.New("malformed session token")
	// ErrNoUserClaim means the token decoded but carries no usable user id.
	ErrNoUserClaim = errors.New("no user identifier claim in token")
)

// UserID extracts the user identifier from a bearer token's claims.
// The decode is local and unverified: the server re-validates the token on
// every request, and the id is used only to build request paths. The
// primary claim is "userId", falling back to the standard "sub" claim.
//
// Callers must treat an error as "cannot proceed" and abort before issuing
// any network call; an empty user id must never end up in a request URL.
func UserID(tok string) (string, error) {
	if strings.TrimSpace(tok) == "" {
		return "", ErrMalformedToken
	}

	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(tok, claims); err != nil {
		return "", fmt.Errorf("%w: %v", ErrMalformedToken, err)
	}

	if id, ok := claims["userId"].(string); ok && id != "" {
		return id, nil
	}
	if sub, err := claims.GetSubject(); err == nil && sub != "" {
		return sub, nil
	}
	return "", ErrNoUserClaim
}
