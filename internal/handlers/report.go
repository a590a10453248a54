package handlers

import (
	"log"
	"net"
	"net/http"
	"strings"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
	"github.com/x86txt/portfolio-sre-agent/internal/cache"
	"github.com/x86txt/portfolio-sre-agent/internal/llm"
	"github.com/x86txt/portfolio-sre-agent/internal/ratelimit"
	"github.com/x86txt/portfolio-sre-agent/internal/triage"
	"github.com/x86txt/portfolio-sre-agent/internal/triage/report"
)

// ReportHandler serves deterministic and LLM-written incident reports.
type ReportHandler struct {
	store   triage.Store
	writer  llm.Writer // nil disables generation
	cache   *cache.ReportCache
	limiter *ratelimit.KeyedLimiter
}

// NewReportHandler creates a new report handler. writer may be nil when
// generation is disabled or unconfigured.
func NewReportHandler(store triage.Store, writer llm.Writer, reportCache *cache.ReportCache, limiter *ratelimit.KeyedLimiter) *ReportHandler {
	return &ReportHandler{
		store:   store,
		writer:  writer,
		cache:   reportCache,
		limiter: limiter,
	}
}

// ReportResponse wraps a rendered report.
type ReportResponse struct {
	IncidentID string `json:"incidentId"`
	Format     string `json:"format"`
	Model      string `json:"model,omitempty"`
	Generated  bool   `json:"generated"`
	Cached     bool   `json:"cached"`
	Content    string `json:"content"`
}

// SetupRoutes sets up report routes.
func (h *ReportHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/incidents/{id}/report", h.handleReport)
}

// handleReport handles GET /api/incidents/{id}/report?format=&llm=.
// The JSON format is always deterministic; text and markdown go through the
// LLM writer when one is configured and ?llm is not "off".
func (h *ReportHandler) handleReport(w http.ResponseWriter, r *http.Request) {
	incident := h.store.Get(r.PathValue("id"))
	if incident == nil {
		api.RespondError(w, http.StatusNotFound, "Incident not found")
		return
	}

	format := report.FormatMarkdown
	if raw := r.URL.Query().Get("format"); raw != "" {
		f, ok := report.ParseFormat(raw)
		if !ok {
			api.RespondError(w, http.StatusBadRequest, "unknown format: "+raw)
			return
		}
		format = f
	}

	rep := report.Generate(incident)

	wantLLM := h.writer != nil && format != report.FormatJSON
	switch strings.ToLower(r.URL.Query().Get("llm")) {
	case "off", "false", "0":
		wantLLM = false
	}

	if !wantLLM {
		content, err := report.Render(rep, format)
		if err != nil {
			api.RespondError(w, http.StatusInternalServerError, "Failed to render report")
			return
		}
		api.RespondJSON(w, http.StatusOK, ReportResponse{
			IncidentID: incident.ID,
			Format:     string(format),
			Content:    content,
		})
		return
	}

	h.respondGenerated(w, r, incident, rep, format)
}

func (h *ReportHandler) respondGenerated(w http.ResponseWriter, r *http.Request, incident *triage.Incident, rep *report.Report, format report.Format) {
	model := h.writer.Model()

	if content, ok := h.cache.Get(incident.ID, model, string(format)); ok {
		api.RespondJSON(w, http.StatusOK, ReportResponse{
			IncidentID: incident.ID,
			Format:     string(format),
			Model:      model,
			Generated:  true,
			Cached:     true,
			Content:    content,
		})
		return
	}

	// Generation is rate limited per client; past the limit callers get the
	// deterministic report instead of an error.
	if !h.limiter.Allow(clientIP(r)) {
		log.Printf("ReportHandler: Rate limit hit for %s, serving deterministic report", clientIP(r))
		h.respondDeterministic(w, incident, rep, format, "rate limit exceeded")
		return
	}

	reportJSON, err := report.RenderJSON(rep)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}

	content, err := h.writer.WriteReport(reportJSON, string(format))
	if err != nil {
		log.Printf("ReportHandler: Generation failed for incident %s: %v", incident.ID, err)
		h.respondDeterministic(w, incident, rep, format, "generation failed")
		return
	}

	h.cache.Set(incident.ID, model, string(format), content)

	api.RespondJSON(w, http.StatusOK, ReportResponse{
		IncidentID: incident.ID,
		Format:     string(format),
		Model:      model,
		Generated:  true,
		Content:    content,
	})
}

// respondDeterministic is the fallback path when generation is unavailable.
func (h *ReportHandler) respondDeterministic(w http.ResponseWriter, incident *triage.Incident, rep *report.Report, format report.Format, reason string) {
	content, err := report.Render(rep, format)
	if err != nil {
		api.RespondError(w, http.StatusInternalServerError, "Failed to render report")
		return
	}
	w.Header().Set("X-Report-Fallback", reason)
	api.RespondJSON(w, http.StatusOK, ReportResponse{
		IncidentID: incident.ID,
		Format:     string(format),
		Content:    content,
	})
}

// clientIP extracts the caller's IP for rate limiting, honoring the first
// X-Forwarded-For hop when present.
func clientIP(r *http.Request) string {
	if fwd := r.Header.Get("X-Forwarded-For"); fwd != "" {
		if idx := strings.IndexByte(fwd, ','); idx >= 0 {
			return strings.TrimSpace(fwd[:idx])
		}
		return strings.TrimSpace(fwd)
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
