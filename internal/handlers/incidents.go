package handlers

import (
	"net/http"
	"strconv"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
)

// defaultIncidentLimit bounds list responses when no limit is given.
const defaultIncidentLimit = 50

// IncidentHandler serves the incident read API and operator resolutions.
type IncidentHandler struct {
	store  triage.Store
	engine *triage.Engine
}

// NewIncidentHandler creates a new incident handler.
func NewIncidentHandler(store triage.Store, engine *triage.Engine) *IncidentHandler {
	return &IncidentHandler{
		store:  store,
		engine: engine,
	}
}

// ResolutionRequest is the body of POST /api/incidents/{id}/resolution.
type ResolutionRequest struct {
	Status string `json:"status"`
	Note   string `json:"note,omitempty"`
}

// SetupRoutes sets up incident routes.
func (h *IncidentHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/incidents", h.handleList)
	mux.HandleFunc("GET /api/incidents/{id}", h.handleGet)
	mux.HandleFunc("POST /api/incidents/{id}/resolution", h.handleResolution)
}

func (h *IncidentHandler) handleList(w http.ResponseWriter, r *http.Request) {
	limit := defaultIncidentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			api.RespondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = n
	}

	incidents := h.store.List(limit)
	summaries := make([]triage.IncidentSummary, 0, len(incidents))
	for _, inc := range incidents {
		summaries = append(summaries, inc.Summarize())
	}

	api.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"incidents": summaries,
		"count":     len(summaries),
	})
}

func (h *IncidentHandler) handleGet(w http.ResponseWriter, r *http.Request) {
	incident := h.store.Get(r.PathValue("id"))
	if incident == nil {
		api.RespondError(w, http.StatusNotFound, "Incident not found")
		return
	}
	api.RespondJSON(w, http.StatusOK, incident)
}

func (h *IncidentHandler) handleResolution(w http.ResponseWriter, r *http.Request) {
	var req ResolutionRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	status, ok := triage.ParseResolutionStatus(req.Status)
	if !ok {
		api.RespondError(w, http.StatusBadRequest, "unknown resolution status: "+req.Status)
		return
	}

	incident := h.engine.Resolve(r.PathValue("id"), status, req.Note)
	if incident == nil {
		api.RespondError(w, http.StatusNotFound, "Incident not found")
		return
	}

	api.RespondJSON(w, http.StatusOK, incident)
}
