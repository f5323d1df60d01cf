package handlers

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/tabs"
)

// RegisterTab creates a page context.
func RegisterTab(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := d.Tabs.Register()
		d.Logger.Debug("page context registered", logger.String("tab", id))
		writeJSON(w, d.Logger, http.StatusCreated, messages.TabRegistration{ID: id, Runtime: d.RuntimeID})
	}
}

// UnregisterTab removes a page context.
func UnregisterTab(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if !d.Tabs.Unregister(id) {
			writeError(w, d.Logger, http.StatusNotFound, tabs.ErrNoReceiver.Error())
			return
		}
		d.Logger.Debug("page context unregistered", logger.String("tab", id))
		w.WriteHeader(http.StatusNoContent)
	}
}

// NextInstruction long-polls for the next instruction of a page context.
// It answers 204 when the wait elapses with nothing queued.
func NextInstruction(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt := r.Header.Get(messages.HeaderRuntime); rt != "" && rt != d.RuntimeID {
			writeError(w, d.Logger, http.StatusConflict, messages.ContextInvalidated)
			return
		}

		id := chi.URLParam(r, "id")
		wait := pollWait(r.URL.Query().Get("wait"), d.MaxPollWait)

		msg, err := d.Tabs.Next(r.Context(), id, wait)
		switch {
		case errors.Is(err, tabs.ErrNoReceiver):
			writeError(w, d.Logger, http.StatusNotFound, err.Error())
			return
		case err != nil:
			// client went away
			return
		case msg == nil:
			w.WriteHeader(http.StatusNoContent)
			return
		}

		data, err := messages.Encode(msg)
		if err != nil {
			d.Logger.Error("failed to encode instruction", logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "internal error")
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Header().Set("Cache-Control", "no-store")
		w.WriteHeader(http.StatusOK)
		if _, err := w.Write(data); err != nil {
			d.Logger.Debug("failed to write instruction", logger.Error(err))
		}
	}
}

// pollWait parses a wait given as a duration ("25s") or whole seconds ("25"),
// capped at limit. Missing or invalid values wait the full limit.
func pollWait(raw string, limit time.Duration) time.Duration {
	if raw == "" {
		return limit
	}
	wait, err := time.ParseDuration(raw)
	if err != nil {
		secs, convErr := strconv.Atoi(raw)
		if convErr != nil {
			return limit
		}
		wait = time.Duration(secs) * time.Second
	}
	if wait <= 0 || wait > limit {
		return limit
	}
	return wait
}
