package routes

import (
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/marksync/marks/internal/httpserver/deps"
	"github.com/marksync/marks/internal/httpserver/handlers"
	"github.com/marksync/marks/internal/httpserver/mw"
)

func init() { Register(registerBookmarks) }

func registerBookmarks(r chi.Router, d deps.Deps) {
	limited := mw.RateLimit(mw.RateLimitConfig{
		Burst:        d.RateLimitBurst,
		RefillPerMin: d.RateLimitPerMin,
		TrustProxy:   d.TrustProxy,
	})

	r.Route("/api/bookmarks", func(r chi.Router) {
		r.Use(middleware.Timeout(5 * time.Second))
		r.Get("/", handlers.ListBookmarks(d))
		r.With(limited).Post("/", handlers.CreateBookmark(d))
		r.With(limited).Delete("/{id}", handlers.DeleteBookmark(d))
	})
}
