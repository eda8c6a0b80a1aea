/**
 * @description
 * This file sets up the HTTP router for the Dhukuti backend using the
 * go-chi/chi router. It defines the API routes, applies middleware for
 * logging, panic recovery, timeouts and CORS, and maps the routes to their
 * corresponding handler functions.
 */
package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
)

// NewRouter creates a new Chi router and registers all backend routes.
func NewRouter(h *Handler) *chi.Mux {
	r := chi.NewRouter()

	// Setup middleware
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		AllowCredentials: true,
		MaxAge:           300, // Maximum value not ignored by any major browsers
	}))

	// Health check endpoint
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		w.Write([]byte("Dhukuti backend is healthy"))
	})

	// Group endpoints
	r.Get("/groups/", h.handleListGroups)
	r.Post("/groups/create/", h.handleCreateGroup)
	r.Get("/activity/", h.handleActivity)

	// User registration and email verification
	r.Post("/auth/register/", h.handleRegister)
	r.Get("/verify-email/", h.handleVerifyEmail)

	// Password reset (send link + confirm new password)
	r.Post("/auth/password-reset/", h.handlePasswordReset)
	r.Post("/auth/password-reset-confirm/", h.handlePasswordResetConfirm)

	// JWT authentication
	r.Post("/auth/login/", h.handleLogin)
	r.Post("/auth/refresh/", h.handleRefresh)

	return r
}
