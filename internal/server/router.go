// Package server assembles the notesd HTTP router.
package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"quicknotes/internal/server/handlers"
	appmw "quicknotes/internal/server/middleware"
	"quicknotes/internal/server/store"
)

func NewRouter(st store.Store, secret []byte) *chi.Mux {
	r := chi.NewRouter()

	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(cors)

	ah := &handlers.AuthHandler{Store: st, Secret: secret}
	nh := handlers.NewNotesHandler(st)

	r.Get("/", ah.ValidateSession)
	r.Post("/login", ah.Login)
	r.Post("/register", ah.Register)

	r.Group(func(r chi.Router) {
		r.Use(appmw.RequireAuth(secret, st))
		r.Post("/logout", ah.Logout)
		r.Get("/notes", nh.List)
		r.Post("/notes", nh.Create)
		r.Put("/notes/{id}", nh.Update)
		r.Delete("/notes/{id}", nh.Delete)
	})

	return r
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, X-Idempotency-Key")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		if r.Method == "OPTIONS" {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}
