// Package router sets up all HTTP routes and middleware chains for the
// newsroom API. It organizes routes into public, authenticated and
// administrator groups with appropriate middleware stacks.
package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"newsroom/internal/handlers"
	"newsroom/internal/middleware"
	"newsroom/internal/session"
)

// Handlers bundles the handler groups the router wires up.
type Handlers struct {
	Auth       *handlers.Auth
	Articles   *handlers.Articles
	Categories *handlers.Categories
	Tags       *handlers.Tags
	Accounts   *handlers.Accounts
	Reports    *handlers.Reports
	Public     *handlers.Public
}

// New creates and returns the configured chi router with all middleware
// and route groups wired up.
func New(sessionStore *session.Store, h Handlers) chi.Router {
	r := chi.NewRouter()

	// Global middleware — applied to every request.
	r.Use(middleware.Recoverer)
	r.Use(middleware.Logger)
	r.Use(middleware.LoadSession(sessionStore))

	// Health check — no auth.
	r.Get("/health", healthHandler)

	r.Route("/api", func(r chi.Router) {
		// Session lifecycle — reachable without a verified session.
		r.Post("/login", h.Auth.Login)
		r.Post("/logout", h.Auth.Logout)
		r.Post("/2fa/verify", h.Auth.TwoFAVerify)

		// Public reader endpoints.
		r.Get("/news", h.Public.News)
		r.Get("/news/{id}", h.Public.Article)
		r.Get("/news/categories", h.Public.Categories)

		// Any authenticated account.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)

			r.Get("/profile", h.Auth.Profile)
			r.Put("/profile", h.Auth.UpdateProfile)
			r.Post("/profile/password", h.Auth.ChangePassword)
			r.Post("/2fa/setup", h.Auth.TwoFASetup)
			r.Post("/2fa/activate", h.Auth.TwoFAActivate)
		})

		// Staff area — article, category and tag management.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireStaff)

			r.Route("/articles", func(r chi.Router) {
				r.Get("/", h.Articles.List)
				r.Post("/", h.Articles.Create)
				r.Get("/mine", h.Articles.Mine)
				r.Get("/{id}", h.Articles.Get)
				r.Put("/{id}", h.Articles.Update)
				r.Delete("/{id}", h.Articles.Delete)
				r.Put("/{id}/tags", h.Articles.SetTags)
				r.Post("/{id}/duplicate", h.Articles.Duplicate)
				r.Get("/{id}/related", h.Articles.Related)
			})

			r.Route("/categories", func(r chi.Router) {
				r.Get("/", h.Categories.List)
				r.Post("/", h.Categories.Create)
				r.Get("/roots", h.Categories.Roots)
				r.Get("/{id}", h.Categories.Get)
				r.Put("/{id}", h.Categories.Update)
				r.Delete("/{id}", h.Categories.Delete)
				r.Post("/{id}/toggle", h.Categories.ToggleActive)
			})

			r.Route("/tags", func(r chi.Router) {
				r.Get("/", h.Tags.List)
				r.Post("/", h.Tags.Create)
				r.Get("/{id}", h.Tags.Get)
				r.Put("/{id}", h.Tags.Update)
				r.Delete("/{id}", h.Tags.Delete)
			})
		})

		// Administrator area — account management and reports.
		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAuth)
			r.Use(middleware.RequireAdmin)

			r.Route("/accounts", func(r chi.Router) {
				r.Get("/", h.Accounts.List)
				r.Post("/", h.Accounts.Create)
				r.Get("/{id}", h.Accounts.Get)
				r.Put("/{id}", h.Accounts.Update)
				r.Delete("/{id}", h.Accounts.Delete)
				r.Post("/{id}/reset-2fa", h.Accounts.ResetTwoFA)
			})

			r.Get("/reports", h.Reports.Generate)
		})
	})

	return r
}

// healthHandler returns a simple JSON health check response.
func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ok"}`))
}
