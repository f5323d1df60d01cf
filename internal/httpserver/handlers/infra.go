package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/MrSnakeDoc/clipflow/internal/httpserver/deps"
)

type componentStatus struct {
	OK      bool   `json:"ok"`
	Backend string `json:"backend,omitempty"`
	Count   *int   `json:"count,omitempty"`
	Impact  string `json:"impact,omitempty"`
	Error   string `json:"error,omitempty"`
}

type infraResponse struct {
	Mode       string                     `json:"mode"`
	Runtime    string                     `json:"runtime"`
	Components map[string]componentStatus `json:"components"`
}

func Infra(d deps.Deps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tabCount := d.Tabs.Count()

		components := map[string]componentStatus{
			"store": checkStore(r.Context(), d),
			"page_contexts": {
				OK:    true,
				Count: &tabCount,
			},
			"config_reload": {
				OK:     d.ReloadTrigger != nil,
				Impact: reloadImpact(d),
			},
		}

		writeJSON(w, d.Logger, http.StatusOK, infraResponse{
			Mode:       determineMode(components),
			Runtime:    d.RuntimeID,
			Components: components,
		})
	}
}

func determineMode(components map[string]componentStatus) string {
	// Without the store nothing can be saved or configured.
	if store, exists := components["store"]; exists && !store.OK {
		return "critical"
	}
	if pages, exists := components["page_contexts"]; exists && pages.Count != nil && *pages.Count == 0 {
		return "idle"
	}
	return "operational"
}

func checkStore(ctx context.Context, d deps.Deps) componentStatus {
	if d.Store == nil {
		return componentStatus{
			Backend: d.StoreBackend,
			Impact:  "saves-disabled",
			Error:   "store not initialized",
		}
	}

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()

	if err := d.Store.Ping(ctx); err != nil {
		return componentStatus{
			Backend: d.StoreBackend,
			Impact:  "saves-disabled",
			Error:   err.Error(),
		}
	}
	return componentStatus{OK: true, Backend: d.StoreBackend}
}

func reloadImpact(d deps.Deps) string {
	if d.ReloadTrigger == nil {
		return "no-config-file"
	}
	return ""
}
