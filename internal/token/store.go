// Package token persists the session bearer credential across runs.
package token

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Store reads and writes the bearer token at a single well-known path.
// The token is opaque to this package: no expiry or format check is
// performed beyond presence.
type Store struct {
	path string
}

// NewStore creates a store backed by the given file path.
func NewStore(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing file path.
func (s *Store) Path() string {
	return s.path
}

// Save writes the token, creating parent directories as needed.
// The file is user-readable only.
func (s *Store) Save(tok string) error {
	if tok == "" {
		return fmt.Errorf("refusing to save empty token")
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return fmt.Errorf("create token dir: %w", err)
	}
	if err := os.WriteFile(s.path, []byte(tok+"\n"), 0600); err != nil {
		return fmt.Errorf("write token file: %w", err)
	}
	return nil
}

// Token returns the stored token, or "" when no token is present.
func (s *Store) Token() (string, error) {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read token file: %w", err)
	}
	return strings.TrimSpace(string(data)), nil
}

// Clear removes the stored token. Clearing an absent token is not an error.
func (s *Store) Clear() error {
	err := os.Remove(s.path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("remove token file: %w", err)
	}
	return nil
}

// Authenticated reports whether a token is present. Presence is the only
// client-side check: the server validates the token on every request.
func (s *Store) Authenticated() bool {
	tok, err := s.Token()
	return err == nil && tok != ""
}
