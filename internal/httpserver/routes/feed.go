package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/marksync/marks/internal/httpserver/deps"
	"github.com/marksync/marks/internal/httpserver/handlers"
)

func init() { Register(registerFeed) }

// The feed route is long-lived; no request timeout middleware here.
func registerFeed(r chi.Router, d deps.Deps) {
	r.Get("/api/feed", handlers.Feed(d))
}
