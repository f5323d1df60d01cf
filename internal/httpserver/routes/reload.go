package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/handlers"
)

func init() { Register("reload", AccessAPI, registerReload) }

// POST /reload re-applies the config overlay without waiting for the file
// watcher.
func registerReload(r chi.Router, d deps.Deps) {
	r.With(middleware.Timeout(d.RequestTimeout)).Post("/reload", handlers.Reload(d))
}
