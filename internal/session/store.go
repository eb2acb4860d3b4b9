package session

import (
	"os"
	"path/filepath"
	"strings"

	"quicknotes/internal/models"
)

// Store is the single source of truth for the current token/user pair.
// The token is persisted to one file so a new process does not force a
// re-login; the user identity lives in memory only and is re-derived
// from the server on the next successful authentication.
//
// Store never performs network calls and never validates the token —
// callers must have validated before calling Set.
type Store struct {
	path string
	user *models.User
}

func NewStore(path string) *Store {
	return &Store{path: path}
}

// DefaultPath returns ~/.quicknotes/token.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".quicknotes", "token"), nil
}

func (s *Store) Set(token string, user models.User) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0700); err != nil {
		return err
	}
	if err := os.WriteFile(s.path, []byte(token), 0600); err != nil {
		return err
	}
	u := user
	s.user = &u
	return nil
}

func (s *Store) Get() (string, bool) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return "", false
	}
	token := strings.TrimSpace(string(data))
	if token == "" {
		return "", false
	}
	return token, true
}

func (s *Store) Clear() {
	os.Remove(s.path)
	s.user = nil
}

func (s *Store) User() (models.User, bool) {
	if s.user == nil {
		return models.User{}, false
	}
	return *s.user, true
}
