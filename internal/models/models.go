package models

import "time"

type User struct {
	ID    int    `json:"id"`
	Email string `json:"email"`
}

type Note struct {
	ID        int       `json:"id"`
	Title     string    `json:"title"`
	Content   string    `json:"content"`
	UserID    int       `json:"user_id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// NotePayload is the request body shared by note create and update.
type NotePayload struct {
	Title   string `json:"title"`
	Content string `json:"content"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Token   string `json:"token"`
	User    User   `json:"user"`
}

type SessionResponse struct {
	Success       bool   `json:"success"`
	Message       string `json:"message"`
	Authenticated bool   `json:"authenticated"`
	User          User   `json:"user"`
	Redirect      string `json:"redirect,omitempty"`
}

type NotesResponse struct {
	Success bool   `json:"success"`
	Notes   []Note `json:"notes"`
}

type NoteResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Note    Note   `json:"note"`
}

type AckResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
}

type RegisterResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	User    User   `json:"user"`
}
