package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"github.com/x86txt/portfolio-sre-agent/internal/api"
	"github.com/x86txt/portfolio-sre-agent/internal/events"
)

// wsWriteTimeout bounds each websocket write so one dead client cannot
// stall its pump goroutine.
const wsWriteTimeout = 10 * time.Second

// StreamHandler pushes live triage events to clients over SSE and websocket.
type StreamHandler struct {
	bus      *events.Bus
	upgrader websocket.Upgrader
}

// NewStreamHandler creates a new stream handler.
func NewStreamHandler(bus *events.Bus) *StreamHandler {
	return &StreamHandler{
		bus: bus,
		upgrader: websocket.Upgrader{
			CheckOrigin: func(r *http.Request) bool {
				return true // CORS middleware already gates browser origins
			},
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
		},
	}
}

// SetupRoutes sets up streaming routes.
func (h *StreamHandler) SetupRoutes(mux *http.ServeMux) {
	mux.HandleFunc("GET /api/stream", h.handleSSE)
	mux.HandleFunc("GET /api/stream/ws", h.handleWebSocket)
}

// handleSSE streams bus messages as server-sent events until the client
// disconnects.
func (h *StreamHandler) handleSSE(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		api.RespondError(w, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	ch, cancel := h.bus.Subscribe()
	defer cancel()

	for {
		select {
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if _, err := w.Write([]byte(msg.SSE())); err != nil {
				return
			}
			flusher.Flush()
		}
	}
}

// handleWebSocket streams bus messages as JSON text frames. Reads are drained
// only to detect the close handshake.
func (h *StreamHandler) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("StreamHandler: WebSocket upgrade failed: %v", err)
		return
	}
	defer conn.Close()

	ch, cancel := h.bus.Subscribe()
	defer cancel()

	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-done:
			return
		case <-r.Context().Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			frame := struct {
				Event string          `json:"event"`
				Data  json.RawMessage `json:"data"`
			}{Event: msg.Event, Data: msg.Data}

			conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
			if err := conn.WriteJSON(frame); err != nil {
				return
			}
		}
	}
}
