package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/marksync/marks/internal/httpserver/deps"
	"github.com/marksync/marks/internal/httpserver/handlers"
	"github.com/marksync/marks/internal/httpserver/mw"
)

func init() { Register(registerInfra) }

func registerInfra(r chi.Router, d deps.Deps) {
	guard := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	r.With(guard).Get("/healthz", handlers.Healthz(d))
	r.With(guard).Get("/readyz", handlers.Readyz(d))
	r.With(guard).Get("/infra", handlers.Infra(d))
}
