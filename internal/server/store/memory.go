package store

import (
	"context"
	"sync"
	"time"

	"quicknotes/internal/models"
)

// Memory is an in-process Store used by tests and local development.
type Memory struct {
	mu         sync.Mutex
	users      map[int]User
	notes      map[int]models.Note
	nextUserID int
	nextNoteID int
}

func NewMemory() *Memory {
	return &Memory{
		users: make(map[int]User),
		notes: make(map[int]models.Note),
	}
}

func (m *Memory) CreateUser(_ context.Context, email, passwordHash string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return User{}, ErrDuplicateEmail
		}
	}
	m.nextUserID++
	u := User{ID: m.nextUserID, Email: email, PasswordHash: passwordHash}
	m.users[u.ID] = u
	return u, nil
}

func (m *Memory) UserByEmail(_ context.Context, email string) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.Email == email {
			return u, nil
		}
	}
	return User{}, ErrNotFound
}

func (m *Memory) UserByID(_ context.Context, id int) (User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return User{}, ErrNotFound
	}
	return u, nil
}

func (m *Memory) SetUserToken(_ context.Context, id int, tok string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	u, ok := m.users[id]
	if !ok {
		return ErrNotFound
	}
	u.Token = tok
	m.users[id] = u
	return nil
}

func (m *Memory) NotesByUser(_ context.Context, userID int) ([]models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	notes := []models.Note{}
	// Iterate in id order so the listing is stable.
	for id := 1; id <= m.nextNoteID; id++ {
		if n, ok := m.notes[id]; ok && n.UserID == userID {
			notes = append(notes, n)
		}
	}
	return notes, nil
}

func (m *Memory) CreateNote(_ context.Context, userID int, title, content string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextNoteID++
	now := time.Now().UTC()
	n := models.Note{
		ID:        m.nextNoteID,
		Title:     title,
		Content:   content,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	m.notes[n.ID] = n
	return n, nil
}

func (m *Memory) UpdateNote(_ context.Context, userID, id int, title, content string) (models.Note, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return models.Note{}, ErrNotFound
	}
	n.Title = title
	n.Content = content
	n.UpdatedAt = time.Now().UTC()
	m.notes[id] = n
	return n, nil
}

func (m *Memory) DeleteNote(_ context.Context, userID, id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	n, ok := m.notes[id]
	if !ok || n.UserID != userID {
		return ErrNotFound
	}
	delete(m.notes, id)
	return nil
}

func (m *Memory) Close() error {
	return nil
}
