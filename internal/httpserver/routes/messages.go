package routes

import (
	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/handlers"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/mw"
)

func init() { Register("messages", AccessAPI, registerMessages) }

// The messages handler sets its own deadline per message kind.
func registerMessages(r chi.Router, d deps.Deps) {
	r.With(
		mw.RateLimit(mw.RateLimitConfig{
			Burst:        d.RateLimitBurst,
			RefillPerMin: d.RateLimitPerMin,
			MaxEntries:   1024,
			TrustProxy:   d.TrustProxy,
		}),
	).Post("/api/messages", handlers.Messages(d))
}
