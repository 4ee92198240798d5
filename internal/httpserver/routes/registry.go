package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/marksync/marks/internal/httpserver/deps"
)

// Registrar mounts one route group on the router.
type Registrar func(r chi.Router, d deps.Deps)

var registry []Registrar

// Register is called from each route file's init.
func Register(reg Registrar) {
	registry = append(registry, reg)
}

// Called once from server.New()
func RegisterAll(r chi.Router, d deps.Deps) {
	for _, reg := range registry {
		reg(r, d)
	}
}
