package handlers

import (
	"net/http"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

// Runtime returns the id clients bind to.
func Runtime(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, d.Logger, http.StatusOK, messages.RuntimeInfo{
			Runtime: d.RuntimeID,
			Version: d.Version,
		})
	}
}
