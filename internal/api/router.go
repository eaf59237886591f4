/**
 * @description
 * This file sets up the HTTP router. It defines the API endpoints,
 * associates them with their handlers, and applies middleware for logging,
 * panic recovery, CORS and authentication.
 *
 * @dependencies
 * - github.com/go-chi/chi/v5: A lightweight and idiomatic router for Go.
 * - github.com/go-chi/cors: CORS middleware.
 */
package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/reckon/reckon-api/internal/app"
)

// NewRouter creates the service router.
func NewRouter(auth *AuthHandler, entries *EntryHandler, tokens *app.TokenIssuer, allowedOrigins string) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   splitOrigins(allowedOrigins),
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Reckon API is running"))
	})

	r.Route("/api", func(r chi.Router) {
		r.Route("/otp", func(r chi.Router) {
			r.Post("/generate", auth.IssueCode)
			// Older frontend builds post to /send.
			r.Post("/send", auth.IssueCode)
			r.Post("/verify", auth.VerifyCode)
		})

		r.Route("/users", func(r chi.Router) {
			r.Post("/register", auth.Register)
			r.Post("/login", auth.Login)
			r.Group(func(r chi.Router) {
				r.Use(AuthMiddleware(tokens))
				r.Get("/profile", auth.Profile)
			})
		})

		r.Group(func(r chi.Router) {
			r.Use(AuthMiddleware(tokens))
			r.Post("/entries", entries.Create)
			r.Post("/entries/quick", entries.CreateQuick)
			r.Post("/entries/speech", entries.CreateFromSpeech)
			r.Get("/entries", entries.List)
			r.Get("/transactions", entries.ListTransactions)
			r.Get("/user/tags", entries.Tags)
			r.Get("/analysis/categories", entries.CategoryTotals)
		})
	})

	return r
}

func splitOrigins(raw string) []string {
	raw = strings.TrimSpace(raw)
	if raw == "" || raw == "*" {
		return []string{"*"}
	}
	parts := strings.Split(raw, ",")
	origins := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
