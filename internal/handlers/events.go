package handlers

import (
	"encoding/json"
	"fmt"
	"net/http"

	"github.com/nonncal/ono-tebe-nado/pkg/logger"
)

type EventHandler struct {
	log *logger.Logger
}

func NewEventHandler(log *logger.Logger) (*EventHandler, error) {
	return &EventHandler{
		log: log,
	}, nil
}

type eventFrame struct {
	name string
	data any
}

// Stream godoc
//
//	@Summary		Server-sent stream of session state changes
//	@Description	Every notification the state core emits for this session, as SSE frames
//	@Tags			Events
//	@Produce		text/event-stream
//	@Success		200
//	@Router			/events [get]
func (h *EventHandler) Stream(w http.ResponseWriter, r *http.Request) {
	sess := requireSession(w, r)
	if sess == nil {
		return
	}

	flusher, ok := w.(http.Flusher)
	if !ok {
		RespondErrorJSON(w, r, http.StatusInternalServerError, ErrNoStreaming.Error(), "response writer does not support streaming", nil)
		return
	}

	// State mutations emit while the session lock is held, so the bridge to
	// this goroutine must never block. A slow consumer loses frames rather
	// than stalls the mutator.
	frames := make(chan eventFrame, 16)
	unsubscribe := sess.Events.OnAll(func(name string, data any) {
		select {
		case frames <- eventFrame{name: name, data: data}:
		default:
			h.log.Warnw("event frame dropped, slow SSE consumer", "session", sess.ID, "event", name)
		}
	})
	defer unsubscribe()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			return
		case frame := <-frames:
			payload, err := json.Marshal(frame.data)
			if err != nil {
				h.log.Warnw("failed to marshal event payload", "event", frame.name, "error", err)
				continue
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", frame.name, payload)
			flusher.Flush()
		}
	}
}
