package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"sync"

	"github.com/go-chi/chi/v5"

	"quicknotes/internal/models"
	"quicknotes/internal/server/middleware"
	"quicknotes/internal/server/store"
)

type NotesHandler struct {
	Store store.Store

	// Created notes are remembered per idempotency key so an exact
	// duplicate delivery replays the original instead of inserting twice.
	mu   sync.Mutex
	seen map[string]models.Note
}

func NewNotesHandler(st store.Store) *NotesHandler {
	return &NotesHandler{Store: st, seen: make(map[string]models.Note)}
}

func getUserID(r *http.Request) int {
	return r.Context().Value(middleware.UserKey).(int)
}

func (h *NotesHandler) List(w http.ResponseWriter, r *http.Request) {
	notes, err := h.Store.NotesByUser(r.Context(), getUserID(r))
	if err != nil {
		log.Printf("List notes: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Could not load notes")
		return
	}
	writeJSON(w, http.StatusOK, models.NotesResponse{Success: true, Notes: notes})
}

func (h *NotesHandler) Create(w http.ResponseWriter, r *http.Request) {
	userID := getUserID(r)

	var req models.NotePayload
	json.NewDecoder(r.Body).Decode(&req)
	if req.Title == "" || req.Content == "" {
		writeMessage(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	key := r.Header.Get("X-Idempotency-Key")
	if key != "" {
		key = fmt.Sprintf("%d:%s", userID, key)
		h.mu.Lock()
		note, ok := h.seen[key]
		h.mu.Unlock()
		if ok {
			writeJSON(w, http.StatusCreated, models.NoteResponse{
				Success: true,
				Message: "Note created successfully",
				Note:    note,
			})
			return
		}
	}

	note, err := h.Store.CreateNote(r.Context(), userID, req.Title, req.Content)
	if err != nil {
		log.Printf("Create note: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Could not create note")
		return
	}
	if key != "" {
		h.mu.Lock()
		h.seen[key] = note
		h.mu.Unlock()
	}

	writeJSON(w, http.StatusCreated, models.NoteResponse{
		Success: true,
		Message: "Note created successfully",
		Note:    note,
	})
}

func (h *NotesHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid note id")
		return
	}

	var req models.NotePayload
	json.NewDecoder(r.Body).Decode(&req)
	if req.Title == "" || req.Content == "" {
		writeMessage(w, http.StatusBadRequest, "Title and content are required")
		return
	}

	note, err := h.Store.UpdateNote(r.Context(), getUserID(r), id, req.Title, req.Content)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		log.Printf("Update note: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Could not update note")
		return
	}

	writeJSON(w, http.StatusOK, models.NoteResponse{
		Success: true,
		Message: "Note updated successfully",
		Note:    note,
	})
}

func (h *NotesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		writeMessage(w, http.StatusBadRequest, "Invalid note id")
		return
	}

	err = h.Store.DeleteNote(r.Context(), getUserID(r), id)
	if errors.Is(err, store.ErrNotFound) {
		writeMessage(w, http.StatusNotFound, "Note not found")
		return
	}
	if err != nil {
		log.Printf("Delete note: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Could not delete note")
		return
	}

	writeJSON(w, http.StatusOK, models.AckResponse{Success: true, Message: "Note deleted successfully"})
}
