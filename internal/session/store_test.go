package session

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"quicknotes/internal/models"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return NewStore(filepath.Join(t.TempDir(), "token"))
}

func TestStore_EmptyByDefault(t *testing.T) {
	s := newTestStore(t)

	_, ok := s.Get()
	assert.False(t, ok)
	_, ok = s.User()
	assert.False(t, ok)
}

func TestStore_SetPersistsTokenAndHoldsUser(t *testing.T) {
	s := newTestStore(t)

	err := s.Set("tok-123", models.User{ID: 7, Email: "a@b.com"})
	require.NoError(t, err)

	token, ok := s.Get()
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)

	user, ok := s.User()
	require.True(t, ok)
	assert.Equal(t, 7, user.ID)
	assert.Equal(t, "a@b.com", user.Email)
}

func TestStore_TokenSurvivesNewInstance(t *testing.T) {
	path := filepath.Join(t.TempDir(), "token")

	first := NewStore(path)
	require.NoError(t, first.Set("tok-123", models.User{ID: 1, Email: "a@b.com"}))

	// A fresh process sees the token but not the user identity, which
	// is only ever derived from an authentication response.
	second := NewStore(path)
	token, ok := second.Get()
	require.True(t, ok)
	assert.Equal(t, "tok-123", token)
	_, ok = second.User()
	assert.False(t, ok)
}

func TestStore_ClearRemovesBoth(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("tok-123", models.User{ID: 1, Email: "a@b.com"}))

	s.Clear()

	_, ok := s.Get()
	assert.False(t, ok)
	_, ok = s.User()
	assert.False(t, ok)

	// Clearing an already empty store is fine.
	s.Clear()
}

func TestStore_TokenFileMode(t *testing.T) {
	s := newTestStore(t)
	require.NoError(t, s.Set("tok-123", models.User{ID: 1, Email: "a@b.com"}))

	info, err := os.Stat(s.path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())
}
