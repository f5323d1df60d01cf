package routes

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
	"github.com/MrSnakeDoc/clipflow/internal/httpserver/mw"
	"github.com/MrSnakeDoc/clipflow/internal/logger"
)

type (
	Registrar  func(r chi.Router, d deps.Deps)
	Middleware = func(http.Handler) http.Handler
)

// Access selects the guards RegisterAll puts in front of a route group.
type Access int

const (
	// AccessLocal restricts a group to allowed client addresses.
	AccessLocal Access = iota
	// AccessAPI also checks the Host header, for routes that browsers
	// could be tricked into calling.
	AccessAPI
)

type entry struct {
	name   string
	reg    Registrar
	access Access
}

var registry []entry

// Register adds a route group. Call it from init.
func Register(name string, access Access, reg Registrar) {
	registry = append(registry, entry{name: name, reg: reg, access: access})
}

// RegisterAll mounts every group. Called once from httpserver.NewHandler.
func RegisterAll(r chi.Router, d deps.Deps) {
	allowCIDRS := mw.AllowOnlyCIDRS(d.AllowedCIDRS, d.TrustProxy, d.Logger)
	enforceHost := mw.EnforceHost(d.AllowedHosts, d.Logger)

	for _, e := range registry {
		guards := []Middleware{allowCIDRS}
		if e.access == AccessAPI {
			guards = append(guards, enforceHost)
		}
		e.reg(r.With(guards...), d)
		d.Logger.Debug("routes registered", logger.String("group", e.name))
	}
}
