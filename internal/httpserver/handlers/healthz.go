package handlers

import (
	"net/http"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
)

type buildInfo struct {
	Version   string `json:"version,omitempty"`
	Commit    string `json:"commit,omitempty"`
	BuildDate string `json:"build_date,omitempty"`
	GoVersion string `json:"go_version,omitempty"`
}

type healthzResponse struct {
	Status  string    `json:"status"`
	Runtime string    `json:"runtime"`
	Uptime  string    `json:"uptime"`
	Tabs    int       `json:"tabs"`
	Build   buildInfo `json:"build"`
}

// Healthz answers as long as the process serves HTTP. It never touches the
// store; readyz does.
func Healthz(d deps.Deps) http.HandlerFunc {
	build := buildInfo{
		Version:   d.Version,
		Commit:    d.Commit,
		BuildDate: d.BuildDate,
		GoVersion: d.GoVersion,
	}
	return func(w http.ResponseWriter, r *http.Request) {
		res := healthzResponse{
			Status:  "ok",
			Runtime: d.RuntimeID,
			Uptime:  d.TimeNow().Sub(d.StartTime).Truncate(time.Second).String(),
			Build:   build,
		}
		if d.Tabs != nil {
			res.Tabs = d.Tabs.Count()
		}
		writeJSON(w, d.Logger, http.StatusOK, res)
	}
}
