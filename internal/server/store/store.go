// Package store is the storage port for notesd: MySQL in production,
// in-memory for tests.
package store

import (
	"context"
	"errors"

	"quicknotes/internal/models"
)

var (
	ErrNotFound       = errors.New("not found")
	ErrDuplicateEmail = errors.New("email already registered")
)

// User is the server-side user record. Token holds the currently issued
// bearer token; it is cleared on logout so a revoked token fails
// validation before it expires.
type User struct {
	ID           int
	Email        string
	PasswordHash string
	Token        string
}

type Store interface {
	CreateUser(ctx context.Context, email, passwordHash string) (User, error)
	UserByEmail(ctx context.Context, email string) (User, error)
	UserByID(ctx context.Context, id int) (User, error)
	SetUserToken(ctx context.Context, id int, token string) error

	NotesByUser(ctx context.Context, userID int) ([]models.Note, error)
	CreateNote(ctx context.Context, userID int, title, content string) (models.Note, error)
	UpdateNote(ctx context.Context, userID, id int, title, content string) (models.Note, error)
	DeleteNote(ctx context.Context, userID, id int) error

	Close() error
}
