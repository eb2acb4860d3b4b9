// Package notes keeps the client's cached note collection consistent
// with the server. The server is the source of truth: the cache is only
// ever patched after a confirmed response, never optimistically.
package notes

import (
	"context"
	"strings"
	"sync"

	"github.com/google/uuid"

	"quicknotes/internal/api"
	"quicknotes/internal/models"
)

// ValidationError is a local, field-level failure raised before any
// network call happens.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

type Controller struct {
	api *api.Client

	mu         sync.Mutex
	collection []models.Note

	// Request generations guard against a stale response resolving
	// late: a response is applied only if nothing newer landed first.
	gen     uint64
	applied uint64
}

func NewController(client *api.Client) *Controller {
	return &Controller{api: client}
}

// Notes returns a copy of the cached collection in display order.
func (c *Controller) Notes() []models.Note {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]models.Note, len(c.collection))
	copy(out, c.collection)
	return out
}

// Refresh replaces the collection wholesale and is the only way it is
// populated from empty.
func (c *Controller) Refresh(ctx context.Context) error {
	g := c.next()
	fetched, err := c.api.ListNotes(ctx)
	if err != nil {
		return err
	}
	c.apply(g, func() {
		c.collection = fetched
	})
	return nil
}

// Create validates locally first, then appends the server-returned note
// (with its assigned id and timestamps) on success. Each attempt gets a
// fresh idempotency key so the server can drop duplicate deliveries.
func (c *Controller) Create(ctx context.Context, title, content string) (models.Note, error) {
	if err := validatePayload(title, content); err != nil {
		return models.Note{}, err
	}
	g := c.next()
	note, err := c.api.CreateNote(ctx, models.NotePayload{Title: title, Content: content}, uuid.NewString())
	if err != nil {
		return models.Note{}, err
	}
	c.apply(g, func() {
		c.collection = append(c.collection, note)
	})
	return note, nil
}

// Update replaces the matching entry by id. When no local entry matches
// (stale cache) the server mutation has still succeeded; the local view
// catches up on the next Refresh.
func (c *Controller) Update(ctx context.Context, id int, title, content string) (models.Note, error) {
	if err := validatePayload(title, content); err != nil {
		return models.Note{}, err
	}
	g := c.next()
	note, err := c.api.UpdateNote(ctx, id, models.NotePayload{Title: title, Content: content})
	if err != nil {
		return models.Note{}, err
	}
	c.apply(g, func() {
		for i := range c.collection {
			if c.collection[i].ID == id {
				c.collection[i] = note
				return
			}
		}
	})
	return note, nil
}

// Delete removes the entry by id; an id absent locally is a no-op on
// the collection.
func (c *Controller) Delete(ctx context.Context, id int) error {
	g := c.next()
	if err := c.api.DeleteNote(ctx, id); err != nil {
		return err
	}
	c.apply(g, func() {
		kept := make([]models.Note, 0, len(c.collection))
		for _, n := range c.collection {
			if n.ID != id {
				kept = append(kept, n)
			}
		}
		c.collection = kept
	})
	return nil
}

func validatePayload(title, content string) error {
	if strings.TrimSpace(title) == "" {
		return &ValidationError{Field: "title", Message: "Title is required"}
	}
	if strings.TrimSpace(content) == "" {
		return &ValidationError{Field: "content", Message: "Content is required"}
	}
	return nil
}

func (c *Controller) next() uint64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	return c.gen
}

// apply runs the mutation unless a response from a later request has
// already been applied, in which case the stale result is discarded.
func (c *Controller) apply(g uint64, fn func()) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	if g <= c.applied {
		return false
	}
	c.applied = g
	fn()
	return true
}
