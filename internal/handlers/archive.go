package handlers

import (
	"net/http"
	"strconv"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
	"github.com/x86txt/portfolio-sre-agent/internal/database"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// ArchiveHandler serves the durable incident archive. Unlike the live store,
// the archive retains resolved incidents indefinitely, so it backs the
// incident history views.
type ArchiveHandler struct {
	archive *database.Archive
}

// NewArchiveHandler creates a new archive handler.
func NewArchiveHandler(archive *database.Archive) *ArchiveHandler {
	return &ArchiveHandler{archive: archive}
}

// SetupRoutes sets up archive routes.
func (h *ArchiveHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/archive/incidents", h.handleList)
	mux.HandleFunc("GET /api/archive/incidents/{id}", h.handleGet)
}

func (h *ArchiveHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultIncidentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	incidents, err := h.archive.ListRecent(limit)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to read incident archive")
		return
	}

	summaries := make([]triage.IncidentSummary, 0, len(incidents))
	for _, inc := range incidents {
		summaries = append(summaries, inc.Summarize())
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"incidents": summaries,
		"count":     len(summaries),
	})
}

func (h *ArchiveHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	incident, err := h.archive.GetIncident(r.PathValue("id"))
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to read incident archive")
		return
	}
	if incident == nil {
		api.RespondErrorWithCode(w, http.StatusNotFound, "incident_not_found", "Incident not found in archive")
		return
	}
	api.RespondJSON(w, http.StatusOK, incident)
}
