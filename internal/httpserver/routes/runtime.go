package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/handlers"
)

func init() { Register("runtime", AccessAPI, registerRuntime) }

func registerRuntime(r chi.Router, d deps.Deps) {
	r.With(middleware.Timeout(d.RequestTimeout)).Get("/api/runtime", handlers.Runtime(d))
}
