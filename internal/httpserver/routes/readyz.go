package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/handlers"
)

func init() { Register("probes", AccessLocal, registerProbes) }

func registerProbes(r chi.Router, d deps.Deps) {
	probes := r.With(middleware.Timeout(d.RequestTimeout))
	probes.Get("/healthz", handlers.Healthz(d))
	probes.Get("/readyz", handlers.Readyz(d))
	probes.Get("/infra", handlers.Infra(d))
}
