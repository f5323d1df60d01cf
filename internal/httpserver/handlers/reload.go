package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

type reloadResponse struct {
	Queued bool `json:"queued"`
}

// Reload queues a re-read of the config overlay. The trigger channel holds
// one pending request; a second one while it is full gets 429.
func Reload(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if d.ReloadTrigger == nil {
			writeError(w, d.Logger, http.StatusNotFound, "no config file configured")
			return
		}

		from := logger.String("remote_ip", r.RemoteAddr)
		select {
		case d.ReloadTrigger <- struct{}{}:
			d.Logger.Info("config reload queued", from)
			writeJSON(w, d.Logger, http.StatusAccepted, reloadResponse{Queued: true})
		default:
			d.Logger.Warn("config reload already pending", from)
			writeError(w, d.Logger, http.StatusTooManyRequests, "reload already pending")
		}
	}
}
