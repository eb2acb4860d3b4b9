package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"

	"quicknotes/internal/server/middleware"
	"quicknotes/internal/server/store"
)

func newNotesHandler() (*NotesHandler, *store.Memory) {
	st := store.NewMemory()
	return NewNotesHandler(st), st
}

func withUser(req *http.Request, userID int) *http.Request {
	return req.WithContext(context.WithValue(req.Context(), middleware.UserKey, userID))
}

func withNoteID(req *http.Request, id string) *http.Request {
	chiCtx := chi.NewRouteContext()
	chiCtx.URLParams.Add("id", id)
	return req.WithContext(context.WithValue(req.Context(), chi.RouteCtxKey, chiCtx))
}

func setupNotes(st *store.Memory) {
	// Two notes for user 1, one for user 2
	st.CreateNote(context.Background(), 1, "Test Note 1", "content 1")
	st.CreateNote(context.Background(), 1, "Test Note 2", "content 2")
	st.CreateNote(context.Background(), 2, "Other User Note", "content 3")
}

func TestListNotes(t *testing.T) {
	h, st := newNotesHandler()
	setupNotes(st)

	// Test case 1: Notes are scoped to the requesting user
	t.Run("Notes scoped to user", func(t *testing.T) {
		req := withUser(httptest.NewRequest("GET", "/notes", nil), 1)
		rr := httptest.NewRecorder()

		h.List(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		notes, _ := resp["notes"].([]interface{})
		if len(notes) != 2 {
			t.Errorf("Expected 2 notes, got %d", len(notes))
		}
		for _, raw := range notes {
			note := raw.(map[string]interface{})
			if int(note["user_id"].(float64)) != 1 {
				t.Errorf("Expected user_id 1, got %v", note["user_id"])
			}
		}
	})

	// Test case 2: Empty list is an empty array, not null
	t.Run("Empty list", func(t *testing.T) {
		req := withUser(httptest.NewRequest("GET", "/notes", nil), 99)
		rr := httptest.NewRecorder()

		h.List(rr, req)

		var resp struct {
			Notes []interface{} `json:"notes"`
		}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp.Notes == nil {
			t.Errorf("Expected empty notes array, got null")
		}
		if len(resp.Notes) != 0 {
			t.Errorf("Expected 0 notes, got %d", len(resp.Notes))
		}
	})
}

func TestCreateNoteHandler(t *testing.T) {
	h, _ := newNotesHandler()

	// Test case 1: Successful creation
	t.Run("Create note", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{
			"title":   "Groceries",
			"content": "milk",
		})
		req := withUser(httptest.NewRequest("POST", "/notes", bytes.NewBuffer(reqBody)), 1)
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		if status := rr.Code; status != http.StatusCreated {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusCreated)
		}

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		note, _ := resp["note"].(map[string]interface{})
		if note["title"] != "Groceries" {
			t.Errorf("Expected title 'Groceries', got %v", note["title"])
		}
		if int(note["user_id"].(float64)) != 1 {
			t.Errorf("Expected user_id 1, got %v", note["user_id"])
		}
		if int(note["id"].(float64)) == 0 {
			t.Errorf("Expected a server-assigned id")
		}
	})

	// Test case 2: Missing title
	t.Run("Missing title", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{"content": "milk"})
		req := withUser(httptest.NewRequest("POST", "/notes", bytes.NewBuffer(reqBody)), 1)
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["message"] != "Title and content are required" {
			t.Errorf("Expected required-fields message, got %q", resp["message"])
		}
	})

	// Test case 3: Duplicate idempotency key replays the original note
	t.Run("Idempotency key replay", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{
			"title":   "Once",
			"content": "only",
		})

		first := withUser(httptest.NewRequest("POST", "/notes", bytes.NewBuffer(reqBody)), 1)
		first.Header.Set("X-Idempotency-Key", "key-abc")
		rr1 := httptest.NewRecorder()
		h.Create(rr1, first)

		second := withUser(httptest.NewRequest("POST", "/notes", bytes.NewBuffer(reqBody)), 1)
		second.Header.Set("X-Idempotency-Key", "key-abc")
		rr2 := httptest.NewRecorder()
		h.Create(rr2, second)

		var resp1, resp2 map[string]interface{}
		json.Unmarshal(rr1.Body.Bytes(), &resp1)
		json.Unmarshal(rr2.Body.Bytes(), &resp2)
		id1 := resp1["note"].(map[string]interface{})["id"]
		id2 := resp2["note"].(map[string]interface{})["id"]
		if id1 != id2 {
			t.Errorf("Expected the same note id on replay, got %v and %v", id1, id2)
		}
	})

	// Test case 4: Same key from a different user still creates
	t.Run("Idempotency key is per user", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{
			"title":   "Mine",
			"content": "too",
		})
		req := withUser(httptest.NewRequest("POST", "/notes", bytes.NewBuffer(reqBody)), 2)
		req.Header.Set("X-Idempotency-Key", "key-abc")
		rr := httptest.NewRecorder()

		h.Create(rr, req)

		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		note, _ := resp["note"].(map[string]interface{})
		if note["title"] != "Mine" {
			t.Errorf("Expected a new note for the other user, got %v", note)
		}
	})
}

func TestUpdateNoteHandler(t *testing.T) {
	h, st := newNotesHandler()
	setupNotes(st)

	// Test case 1: Update own note
	t.Run("Update own note", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{
			"title":   "Test Note 1",
			"content": "updated content",
		})
		req := withUser(withNoteID(httptest.NewRequest("PUT", "/notes/1", bytes.NewBuffer(reqBody)), "1"), 1)
		rr := httptest.NewRecorder()

		h.Update(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}
		var resp map[string]interface{}
		json.Unmarshal(rr.Body.Bytes(), &resp)
		note, _ := resp["note"].(map[string]interface{})
		if note["content"] != "updated content" {
			t.Errorf("Expected updated content, got %v", note["content"])
		}
	})

	// Test case 2: Update someone else's note
	t.Run("Update someone else's note", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{
			"title":   "Hijack",
			"content": "attempt",
		})
		req := withUser(withNoteID(httptest.NewRequest("PUT", "/notes/3", bytes.NewBuffer(reqBody)), "3"), 1)
		rr := httptest.NewRecorder()

		h.Update(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}
	})

	// Test case 3: Update non-existent note
	t.Run("Update non-existent note", func(t *testing.T) {
		reqBody, _ := json.Marshal(map[string]string{
			"title":   "Ghost",
			"content": "note",
		})
		req := withUser(withNoteID(httptest.NewRequest("PUT", "/notes/999", bytes.NewBuffer(reqBody)), "999"), 1)
		rr := httptest.NewRecorder()

		h.Update(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}
		var resp map[string]string
		json.Unmarshal(rr.Body.Bytes(), &resp)
		if resp["message"] != "Note not found" {
			t.Errorf("Expected not-found message, got %q", resp["message"])
		}
	})

	// Test case 4: Missing fields
	t.Run("Missing fields", func(t *testing.T) {
		req := withUser(withNoteID(httptest.NewRequest("PUT", "/notes/1", bytes.NewBuffer([]byte(`{}`))), "1"), 1)
		rr := httptest.NewRecorder()

		h.Update(rr, req)

		if status := rr.Code; status != http.StatusBadRequest {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusBadRequest)
		}
	})
}

func TestDeleteNoteHandler(t *testing.T) {
	h, st := newNotesHandler()
	setupNotes(st)

	// Test case 1: Delete own note
	t.Run("Delete own note", func(t *testing.T) {
		req := withUser(withNoteID(httptest.NewRequest("DELETE", "/notes/2", nil), "2"), 1)
		rr := httptest.NewRecorder()

		h.Delete(rr, req)

		if status := rr.Code; status != http.StatusOK {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusOK)
		}

		notes, _ := st.NotesByUser(context.Background(), 1)
		if len(notes) != 1 {
			t.Errorf("Expected 1 remaining note, got %d", len(notes))
		}
	})

	// Test case 2: Delete someone else's note
	t.Run("Delete someone else's note", func(t *testing.T) {
		req := withUser(withNoteID(httptest.NewRequest("DELETE", "/notes/3", nil), "3"), 1)
		rr := httptest.NewRecorder()

		h.Delete(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}

		notes, _ := st.NotesByUser(context.Background(), 2)
		if len(notes) != 1 {
			t.Errorf("Other user's note should still exist")
		}
	})

	// Test case 3: Delete non-existent note
	t.Run("Delete non-existent note", func(t *testing.T) {
		req := withUser(withNoteID(httptest.NewRequest("DELETE", "/notes/999", nil), "999"), 1)
		rr := httptest.NewRecorder()

		h.Delete(rr, req)

		if status := rr.Code; status != http.StatusNotFound {
			t.Errorf("Handler returned wrong status code: got %v want %v", status, http.StatusNotFound)
		}
	})
}
