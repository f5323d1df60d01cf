package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/router"
)

// maxMessageBytes bounds a request body. Copied text travels inside it.
const maxMessageBytes = 1 << 20

// Messages decodes one protocol message, dispatches it and writes the typed
// response. A sender bound to a previous runtime gets 409.
func Messages(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if rt := r.Header.Get(messages.HeaderRuntime); rt != "" && rt != d.RuntimeID {
			writeError(w, d.Logger, http.StatusConflict, messages.ContextInvalidated)
			return
		}

		body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxMessageBytes))
		if err != nil {
			writeError(w, d.Logger, http.StatusRequestEntityTooLarge, "message too large")
			return
		}
		msg, err := messages.Decode(body)
		if err != nil {
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
			return
		}

		timeout := d.RequestTimeout
		if msg.Kind() == messages.TypeNotionConnect {
			timeout = d.ConnectTimeout
		}
		ctx, cancel := context.WithTimeout(r.Context(), timeout)
		defer cancel()

		from := router.Sender{TabID: r.Header.Get(messages.HeaderTab)}
		resp, err := d.Router.Dispatch(ctx, from, msg)
		if errors.Is(err, router.ErrUnsupported) {
			writeError(w, d.Logger, http.StatusBadRequest, err.Error())
			return
		}
		if err != nil {
			d.Logger.Error("dispatch failed",
				logger.String("type", string(msg.Kind())),
				logger.Error(err))
			writeError(w, d.Logger, http.StatusInternalServerError, "internal error")
			return
		}

		writeJSON(w, d.Logger, http.StatusOK, resp)
	}
}
