package mw

import (
	"encoding/json"
	"net/http"

	"github.com/MrSnakeDoc/clipflow/internal/logger"
	"github.com/MrSnakeDoc/clipflow/internal/messages"
	"github.com/MrSnakeDoc/clipflow/internal/utils"
)

// AllowOnlyCIDRS rejects clients outside allowed with 403. An empty list
// disables the check. Widgets and the CLI run on the same machine, so the
// default list is loopback only.
func AllowOnlyCIDRS(allowed []string, trustProxy bool, log logger.Logger) func(http.Handler) http.Handler {
	m := utils.NewAddrMatcher(allowed)
	for _, bad := range m.Invalid() {
		log.Warn("ignoring invalid allowed CIDR", logger.String("entry", bad))
	}
	if m.IsEmpty() {
		log.Debug("AllowOnlyCIDRS: empty matcher, passthrough mode")
		return func(next http.Handler) http.Handler { return next }
	}
	if !m.LoopbackOnly() {
		log.Debug("AllowOnlyCIDRS: router reachable from non-loopback clients",
			logger.Any("allowed", allowed))
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			addr := utils.ClientAddr(r, trustProxy)
			if !m.Allow(addr) {
				log.Debug("client rejected",
					logger.String("addr", addr.String()),
					logger.String("remote", r.RemoteAddr))
				forbidden(w)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// forbidden answers 403 with the transport's error body.
func forbidden(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusForbidden)
	_ = json.NewEncoder(w).Encode(messages.ErrorBody{Error: "forbidden"})
}
