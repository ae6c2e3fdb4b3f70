package server

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Stream event names
const (
	EventStage    = "stage"
	EventResult   = "result"
	EventError    = "error"
	EventComplete = "complete"
)

// Conversion stages reported on the stream
const (
	StageExtracted  = "extracted"
	StageGenerating = "generating"
	StageRendered   = "rendered"
)

// SSEWriter helps write Server-Sent Events
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter creates a new SSE writer
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, fmt.Errorf("streaming not supported")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent sends an SSE event
func (s *SSEWriter) WriteEvent(event string, data any) error {
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}

	if _, err := fmt.Fprintf(s.w, "event: %s\ndata: %s\n\n", event, jsonData); err != nil {
		return err
	}
	s.flusher.Flush()
	return nil
}

// WriteStage reports progress through a conversion
func (s *SSEWriter) WriteStage(stage string, detail map[string]any) {
	data := map[string]any{"stage": stage}
	for k, v := range detail {
		data[k] = v
	}
	s.WriteEvent(EventStage, data) //nolint:errcheck
}

// WriteError sends an error event
func (s *SSEWriter) WriteError(err error) {
	s.WriteEvent(EventError, errorBody(err)) //nolint:errcheck
}

// WriteComplete sends a completion event
func (s *SSEWriter) WriteComplete(requestID, status string) {
	s.WriteEvent(EventComplete, map[string]string{ //nolint:errcheck
		"request_id": requestID,
		"status":     status,
	})
}

// handleConvertStream converts an uploaded resume, reporting progress as Server-Sent Events.
// Request validation failures are plain JSON errors; once the stream starts, failures are error events.
func (s *Server) handleConvertStream(w http.ResponseWriter, r *http.Request) {
	req, source, err := s.readConvertRequest(w, r)
	if err != nil {
		s.failure(w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		s.errorResponse(w, http.StatusInternalServerError, CodeInternal, err.Error())
		return
	}
	w.WriteHeader(http.StatusOK)

	if source != nil {
		sse.WriteStage(StageExtracted, map[string]any{
			"media_type": source.MediaType,
			"characters": source.Characters,
			"pages":      source.Pages,
		})
	}
	sse.WriteStage(StageGenerating, map[string]any{"slot": req.Slot})

	result, err := s.service.Convert(r.Context(), req)
	if err != nil {
		sse.WriteError(err)
		sse.WriteComplete("", "failed")
		return
	}

	sse.WriteStage(StageRendered, map[string]any{
		"sections": result.Sections,
		"skipped":  len(result.Skipped),
	})
	sse.WriteEvent(EventResult, convertResponse(result, source)) //nolint:errcheck
	sse.WriteComplete(result.RequestID, "completed")
}
