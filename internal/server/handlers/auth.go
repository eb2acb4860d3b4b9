package handlers

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"quicknotes/internal/models"
	"quicknotes/internal/server/middleware"
	"quicknotes/internal/server/store"
	"quicknotes/internal/server/token"
)

type AuthHandler struct {
	Store  store.Store
	Secret []byte
}

func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	json.NewDecoder(r.Body).Decode(&req)

	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		writeMessage(w, http.StatusInternalServerError, "Could not create user")
		return
	}

	user, err := h.Store.CreateUser(r.Context(), req.Email, string(hash))
	if errors.Is(err, store.ErrDuplicateEmail) {
		writeMessage(w, http.StatusBadRequest, "User already exists")
		return
	}
	if err != nil {
		log.Printf("Register - create user: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Could not create user")
		return
	}

	writeJSON(w, http.StatusCreated, models.RegisterResponse{
		Success: true,
		Message: "User registered successfully",
		User:    models.User{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req models.Credentials
	json.NewDecoder(r.Body).Decode(&req)

	if req.Email == "" || req.Password == "" {
		writeMessage(w, http.StatusBadRequest, "Email and password are required")
		return
	}

	user, err := h.Store.UserByEmail(r.Context(), req.Email)
	if err != nil || bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)) != nil {
		writeMessage(w, http.StatusUnauthorized, "Invalid email or password")
		return
	}

	signed, err := token.Generate(h.Secret, user.ID, user.Email)
	if err != nil {
		log.Printf("Login - token generation: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Token generation failed")
		return
	}
	// Remember the issued token so logout can revoke it.
	if err := h.Store.SetUserToken(r.Context(), user.ID, signed); err != nil {
		log.Printf("Login - store token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Token generation failed")
		return
	}

	writeJSON(w, http.StatusOK, models.LoginResponse{
		Success: true,
		Message: "Login successful",
		Token:   signed,
		User:    models.User{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(middleware.UserKey).(int)
	if err := h.Store.SetUserToken(r.Context(), userID, ""); err != nil {
		log.Printf("Logout - revoke token: %v", err)
		writeMessage(w, http.StatusInternalServerError, "Logout failed")
		return
	}
	writeJSON(w, http.StatusOK, models.AckResponse{Success: true, Message: "Logged out successfully"})
}

// ValidateSession handles GET /. It is not behind RequireAuth because
// its 401 carries the redirect hint the client's startup check expects.
func (h *AuthHandler) ValidateSession(w http.ResponseWriter, r *http.Request) {
	authHeader := r.Header.Get("Authorization")
	if authHeader == "" {
		h.unauthenticated(w, "No token provided")
		return
	}
	tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
	if tokenStr == authHeader {
		h.unauthenticated(w, "Invalid token format")
		return
	}

	claims, err := token.Parse(h.Secret, tokenStr)
	if err != nil {
		h.unauthenticated(w, "Token is invalid or expired")
		return
	}
	user, err := h.Store.UserByID(r.Context(), claims.UserID)
	if err != nil {
		h.unauthenticated(w, "User not found")
		return
	}
	if user.Token != tokenStr {
		h.unauthenticated(w, "Token is invalid or expired")
		return
	}

	writeJSON(w, http.StatusOK, models.SessionResponse{
		Success:       true,
		Message:       "Welcome to the home page",
		Authenticated: true,
		User:          models.User{ID: user.ID, Email: user.Email},
	})
}

func (h *AuthHandler) unauthenticated(w http.ResponseWriter, message string) {
	writeJSON(w, http.StatusUnauthorized, models.SessionResponse{
		Success:       false,
		Message:       message,
		Authenticated: false,
		Redirect:      "login",
	})
}
