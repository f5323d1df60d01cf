package routes

import (
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/handlers"
)

func init() { Register("tabs", AccessAPI, registerTabs) }

func registerTabs(r chi.Router, d deps.Deps) {
	r.Route("/api/tabs", func(r chi.Router) {
		r.With(middleware.Timeout(d.RequestTimeout)).Post("/", handlers.RegisterTab(d))
		r.With(middleware.Timeout(d.RequestTimeout)).Delete("/{id}", handlers.UnregisterTab(d))
		// bounded by MaxPollWait instead of the request timeout
		r.Get("/{id}/next", handlers.NextInstruction(d))
	})
}
