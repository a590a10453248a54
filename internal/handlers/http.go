package handlers

import (
	"net/http"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
)

// Version is reported by the health endpoint.
const Version = "1.0.0"

// HTTPHandler handles plain HTTP endpoints that carry no triage state.
type HTTPHandler struct{}

// NewHTTPHandler creates a new HTTP handler.
func NewHTTPHandler() *HTTPHandler {
	return &HTTPHandler{}
}

// SetupRoutes configures the basic HTTP routes.
func (h *HTTPHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/health", h.handleHealth)
}

// handleHealth returns a simple health check response.
func (h *HTTPHandler) handleHealth(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		api.RespondError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}

	api.RespondJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": Version,
	})
}
