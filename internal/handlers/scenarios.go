package handlers

import (
	"net/http"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
	"github.com/x86txt/portfolio-sre-agent/internal/events"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/normalize"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/scenarios"
)

// ScenarioHandler replays built-in demo scenarios through the full pipeline.
type ScenarioHandler struct {
	engine     *triage.Engine
	normalizer *normalize.Normalizer
	bus        *events.Bus
}

// NewScenarioHandler creates a new scenario handler.
func NewScenarioHandler(engine *triage.Engine, normalizer *normalize.Normalizer, bus *events.Bus) *ScenarioHandler {
	return &ScenarioHandler{
		engine:     engine,
		normalizer: normalizer,
		bus:        bus,
	}
}

// ScenarioResponse reports the incidents a scenario replay produced.
type ScenarioResponse struct {
	Scenario       string                   `json:"scenario"`
	StepsReplayed  int                      `json:"stepsReplayed"`
	EventsIngested int                      `json:"eventsIngested"`
	Incidents      []triage.IncidentSummary `json:"incidents"`
}

// SetupRoutes sets up scenario routes.
func (h *ScenarioHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("POST /api/scenarios/{name}", h.handleReplay)
}

// handleReplay handles POST /api/scenarios/{name}. Each step goes through
// the same normalize-and-correlate path as a live webhook.
func (h *ScenarioHandler) handleReplay(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	steps, err := scenarios.Get(name)
	if err != nil {
		api.RespondError(w, http.StatusNotFound, err.Error())
		return
	}

	resp := ScenarioResponse{Scenario: name, StepsReplayed: len(steps)}
	seen := make(map[string]int)

	for _, step := range steps {
		evs := h.normalizer.Normalize(step.Provider, step.Payload)
		resp.EventsIngested += len(evs)
		for _, inc := range h.engine.IngestBatch(evs) {
			if idx, ok := seen[inc.ID]; ok {
				resp.Incidents[idx] = inc.Summarize()
				continue
			}
			seen[inc.ID] = len(resp.Incidents)
			resp.Incidents = append(resp.Incidents, inc.Summarize())
		}
		for _, ev := range evs {
			h.bus.Publish(events.EventAlertIngested, ev)
		}
	}

	api.RespondJSON(w, http.StatusOK, resp)
}
