// Package api is the client's transport to the notes backend. Every
// request carries the stored bearer token, and a 401 from any endpoint
// clears the session store and fires the OnSessionInvalid callback
// before the failure reaches the caller, so no call site handles
// authentication failure on its own.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"quicknotes/internal/models"
	"quicknotes/internal/session"
)

const (
	// MsgUnreachable is returned for transport-level failures where no
	// server response exists to take a message from.
	MsgUnreachable = "Unable to reach the server"

	msgGeneric = "Request failed"
)

// Error is the uniform failure shape every API call returns. Controllers
// and views only ever look at Message (and occasionally Status); they
// never branch on transport-specific error types.
type Error struct {
	Status  int
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

type Client struct {
	baseURL string
	http    *http.Client
	session *session.Store

	// OnSessionInvalid fires after a 401 response has cleared the
	// session store. The auth controller subscribes to it; the
	// transport itself makes no navigation decisions.
	OnSessionInvalid func()
}

func NewClient(baseURL string, sess *session.Store) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: 30 * time.Second},
		session: sess,
	}
}

func (c *Client) Login(ctx context.Context, creds models.Credentials) (models.LoginResponse, error) {
	var out models.LoginResponse
	err := c.do(ctx, http.MethodPost, "/login", creds, nil, &out)
	return out, err
}

func (c *Client) ValidateSession(ctx context.Context) (models.SessionResponse, error) {
	var out models.SessionResponse
	err := c.do(ctx, http.MethodGet, "/", nil, nil, &out)
	return out, err
}

func (c *Client) Logout(ctx context.Context) error {
	var out models.AckResponse
	return c.do(ctx, http.MethodPost, "/logout", nil, nil, &out)
}

func (c *Client) Register(ctx context.Context, creds models.Credentials) (models.RegisterResponse, error) {
	var out models.RegisterResponse
	err := c.do(ctx, http.MethodPost, "/register", creds, nil, &out)
	return out, err
}

func (c *Client) ListNotes(ctx context.Context) ([]models.Note, error) {
	var out models.NotesResponse
	if err := c.do(ctx, http.MethodGet, "/notes", nil, nil, &out); err != nil {
		return nil, err
	}
	return out.Notes, nil
}

// CreateNote sends the idempotency key, when non-empty, as an
// X-Idempotency-Key header so the server can drop exact duplicates.
func (c *Client) CreateNote(ctx context.Context, payload models.NotePayload, idempotencyKey string) (models.Note, error) {
	var header http.Header
	if idempotencyKey != "" {
		header = http.Header{"X-Idempotency-Key": []string{idempotencyKey}}
	}
	var out models.NoteResponse
	if err := c.do(ctx, http.MethodPost, "/notes", payload, header, &out); err != nil {
		return models.Note{}, err
	}
	return out.Note, nil
}

func (c *Client) UpdateNote(ctx context.Context, id int, payload models.NotePayload) (models.Note, error) {
	var out models.NoteResponse
	if err := c.do(ctx, http.MethodPut, fmt.Sprintf("/notes/%d", id), payload, nil, &out); err != nil {
		return models.Note{}, err
	}
	return out.Note, nil
}

func (c *Client) DeleteNote(ctx context.Context, id int) error {
	var out models.AckResponse
	return c.do(ctx, http.MethodDelete, fmt.Sprintf("/notes/%d", id), nil, nil, &out)
}

// do runs one request/response round trip. No retries, no per-call
// timeout beyond the transport default.
func (c *Client) do(ctx context.Context, method, path string, body any, header http.Header, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return &Error{Message: msgGeneric}
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return &Error{Message: msgGeneric}
	}
	req.Header.Set("Content-Type", "application/json")
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if token, ok := c.session.Get(); ok {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return &Error{Message: MsgUnreachable}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return &Error{Status: resp.StatusCode, Message: msgGeneric}
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.session.Clear()
		if c.OnSessionInvalid != nil {
			c.OnSessionInvalid()
		}
		return &Error{Status: resp.StatusCode, Message: serverMessage(data)}
	}
	if resp.StatusCode >= 400 {
		return &Error{Status: resp.StatusCode, Message: serverMessage(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			return &Error{Status: resp.StatusCode, Message: msgGeneric}
		}
	}
	return nil
}

func serverMessage(data []byte) string {
	var m struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(data, &m); err == nil && m.Message != "" {
		return m.Message
	}
	return msgGeneric
}
