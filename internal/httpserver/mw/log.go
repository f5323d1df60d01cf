package mw

import (
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5/middleware"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
)

// Log writes one line per HTTP request. Long-polls and probes log at debug,
// server errors at error.
func Log(log logger.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			began := time.Now()
			next.ServeHTTP(ww, r)

			status := ww.Status()
			if status == 0 {
				status = http.StatusOK
			}
			fields := []logger.Field{
				logger.String("request_id", middleware.GetReqID(r.Context())),
				logger.String("method", r.Method),
				logger.String("path", r.URL.Path),
				logger.Int("status", status),
				logger.Int("bytes", ww.BytesWritten()),
				logger.Duration("duration", time.Since(began)),
				logger.String("remote_ip", r.RemoteAddr),
			}
			if tab := r.Header.Get(messages.HeaderTab); tab != "" {
				fields = append(fields, logger.String("tab", tab))
			}

			emit := log.Info
			switch {
			case status >= http.StatusInternalServerError:
				emit = log.Error
			case quietPath(r.URL.Path):
				emit = log.Debug
			}
			emit("http_request", fields...)
		})
	}
}

func quietPath(path string) bool {
	switch path {
	case "/healthz", "/readyz":
		return true
	}
	return strings.HasSuffix(path, "/next")
}
