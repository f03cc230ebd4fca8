package api

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/probelabs/deepresearch/internal/api/shared"
	"github.com/probelabs/deepresearch/internal/platform/logger"
	"github.com/probelabs/deepresearch/internal/stream"
)

// StreamHandler serves task progress over server-sent events.
type StreamHandler struct {
	research   TaskVerifier
	dispatcher *stream.Dispatcher
}

// TaskVerifier is the slice of the research service the stream handler needs
// to reject streams for unknown tasks before any event is written.
type TaskVerifier interface {
	stream.TaskReader
}

// NewStreamHandler creates a new StreamHandler.
func NewStreamHandler(research TaskVerifier, dispatcher *stream.Dispatcher) *StreamHandler {
	return &StreamHandler{
		research:   research,
		dispatcher: dispatcher,
	}
}

// StreamTask handles GET /api/research/{id}/stream requests. The response is
// a text/event-stream that ends after the task's first terminal event.
func (h *StreamHandler) StreamTask(w http.ResponseWriter, r *http.Request) {
	id, err := getPathUUID(r, "id")
	if err != nil {
		shared.RespondWithError(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err))
		return
	}

	// Verify the task exists before committing to the stream content type.
	if _, err := h.research.GetTask(r.Context(), id); err != nil {
		shared.RespondWithErrorAndLog(w, r, MapErrorToStatusCode(err), GetSafeErrorMessage(err), err)
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		shared.RespondWithError(w, r, http.StatusInternalServerError, "Streaming not supported")
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	log := logger.FromContextOrDefault(r.Context(), slog.Default())

	for event := range h.dispatcher.Events(r.Context(), id) {
		if _, err := fmt.Fprintf(w, "event: %s\ndata: %s\n\n", event.Type, event.Data); err != nil {
			log.Debug("stream write failed, client likely disconnected",
				slog.String("task_id", id.String()),
				slog.String("error", err.Error()))
			return
		}
		flusher.Flush()
	}
}
