package sse

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"ms-seating/internal/logger"
)

// StreamHandler serves the change stream to dashboards so they can refetch
// their views after every write
type StreamHandler struct {
	Emitter   *ChangeEmitter
	Logger    *logger.Logger
	Heartbeat time.Duration
}

func NewStreamHandler(emitter *ChangeEmitter, log *logger.Logger) *StreamHandler {
	return &StreamHandler{Emitter: emitter, Logger: log, Heartbeat: 25 * time.Second}
}

func (h *StreamHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming unsupported", http.StatusInternalServerError)
		return
	}

	setupSSEHeaders(w)

	ctx := r.Context()
	eventChan := h.Emitter.Subscribe(ctx)

	fmt.Fprint(w, "event: connected\ndata: {\"status\":\"connected\"}\n\n")
	flusher.Flush()
	h.Logger.Info("SSE", fmt.Sprintf("Client connected to change stream (%d active)", h.Emitter.ClientCount()))

	heartbeat := h.Heartbeat
	if heartbeat <= 0 {
		heartbeat = 25 * time.Second
	}
	ticker := time.NewTicker(heartbeat)
	defer ticker.Stop()

	for {
		select {
		case event, ok := <-eventChan:
			if !ok {
				return
			}
			jsonData, err := json.Marshal(event)
			if err != nil {
				h.Logger.Error("SSE", fmt.Sprintf("Failed to serialize change event: %v", err))
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, jsonData)
			flusher.Flush()

		case <-ticker.C:
			fmt.Fprint(w, ": keep-alive\n\n")
			flusher.Flush()

		case <-ctx.Done():
			h.Logger.Debug("SSE", "Client disconnected from change stream")
			return
		}
	}
}

func setupSSEHeaders(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
}
