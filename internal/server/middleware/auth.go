package middleware

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"quicknotes/internal/server/store"
	"quicknotes/internal/server/token"
)

// UserKey is the request-context key holding the authenticated user id.
const UserKey = "userID"

// RequireAuth validates the bearer token and rejects tokens the user
// has since logged out of, even if they have not expired yet.
func RequireAuth(secret []byte, users store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				unauthorized(w, "Token is missing")
				return
			}

			tokenStr := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenStr == authHeader {
				log.Printf("Auth middleware - Bearer prefix missing in header")
				unauthorized(w, "Invalid token format")
				return
			}

			claims, err := token.Parse(secret, tokenStr)
			if err != nil {
				log.Printf("Auth middleware - token parsing error: %v", err)
				unauthorized(w, "Token is invalid or expired")
				return
			}

			user, err := users.UserByID(r.Context(), claims.UserID)
			if err != nil {
				unauthorized(w, "User not found")
				return
			}
			if user.Token != tokenStr {
				unauthorized(w, "Token is invalid or expired")
				return
			}

			r = r.WithContext(context.WithValue(r.Context(), UserKey, user.ID))
			next.ServeHTTP(w, r)
		})
	}
}

func unauthorized(w http.ResponseWriter, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	json.NewEncoder(w).Encode(map[string]string{"message": message})
}
