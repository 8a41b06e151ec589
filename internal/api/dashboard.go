package api

import (
	"embed"
	"net/http"
)

//go:embed static
var staticFS embed.FS

// dashboardHandler serves the static status dashboard
func (h *Handler) dashboardHandler(w http.ResponseWriter, r *http.Request) {
	data, err := staticFS.ReadFile("static/index.html")
	if err != nil {
		h.writeErrorResponse(w, r, http.StatusInternalServerError, "dashboard unavailable")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}
