package handlers

import (
	"net/http"
	"strings"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
	"github.com/x86txt/portfolio-sre-agent/internal/events"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/normalize"
)

// IngestHandler accepts raw provider payloads, normalizes them, and feeds the
// correlation engine.
type IngestHandler struct {
	engine     *triage.Engine
	normalizer *normalize.Normalizer
	bus        *events.Bus
}

// NewIngestHandler creates a new ingest handler.
func NewIngestHandler(engine *triage.Engine, normalizer *normalize.Normalizer, bus *events.Bus) *IngestHandler {
	return &IngestHandler{
		engine:     engine,
		normalizer: normalizer,
		bus:        bus,
	}
}

// IngestRequest is the envelope accepted by POST /api/ingest. Provider is an
// optional hint; when absent the payload shape decides.
type IngestRequest struct {
	Provider string      `json:"provider,omitempty"`
	Payload  interface{} `json:"payload"`
}

// IngestResponse reports the outcome of one ingest call.
type IngestResponse struct {
	EventsIngested int                      `json:"eventsIngested"`
	IncidentIDs    []string                 `json:"incidentIds"`
	Incidents      []triage.IncidentSummary `json:"incidents"`
}

// SetupRoutes sets up ingestion routes.
func (h *IngestHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/ingest", h.handleIngest)
	// Direct webhooks: /webhook/alert/{provider}
	mux.HandleFunc("POST /webhook/alert/{provider}", h.handleWebhook)
}

// handleIngest handles POST /api/ingest with an optional provider hint.
func (h *IngestHandler) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req IngestRequest
	if err := api.DecodeJSON(r, &req); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if req.Payload == nil {
		api.RespondError(w, http.StatusBadRequest, "payload is required")
		return
	}

	var hint triage.Provider
	if req.Provider != "" {
		p, ok := triage.ParseProvider(strings.ToLower(req.Provider))
		if !ok {
			api.RespondError(w, http.StatusBadRequest, "unknown provider: "+req.Provider)
			return
		}
		hint = p
	}

	h.ingest(w, hint, req.Payload)
}

// handleWebhook handles POST /webhook/alert/{provider} where the path names
// the provider explicitly, the shape monitoring tools are configured with.
func (h *IngestHandler) handleWebhook(w http.ResponseWriter, r *http.Request) {
	provider, ok := triage.ParseProvider(strings.ToLower(r.PathValue("provider")))
	if !ok {
		api.RespondError(w, http.StatusNotFound, "unknown provider: "+r.PathValue("provider"))
		return
	}

	var payload interface{}
	if err := api.DecodeJSON(r, &payload); err != nil {
		api.RespondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.ingest(w, provider, payload)
}

func (h *IngestHandler) ingest(w http.ResponseWriter, hint triage.Provider, payload interface{}) {
	evs := h.normalizer.Normalize(hint, payload)
	if len(evs) == 0 {
		api.RespondError(w, http.StatusBadRequest, "payload produced no alert events")
		return
	}

	incidents := h.engine.IngestBatch(evs)

	resp := IngestResponse{EventsIngested: len(evs)}
	for _, inc := range incidents {
		resp.IncidentIDs = append(resp.IncidentIDs, inc.ID)
		resp.Incidents = append(resp.Incidents, inc.Summarize())
	}

	for _, ev := range evs {
		h.bus.Publish(events.EventAlertIngested, ev)
	}

	api.RespondJSON(w, http.StatusAccepted, resp)
}
