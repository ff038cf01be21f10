package api

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"podscribe/internal/notify"
)

// streamEvents serves a server-sent event stream for one episode. Each event
// is one JSON object in a data: frame. When the stream is idle for a full
// keepalive interval, a synthetic keepalive event is written so intermediate
// proxies keep the connection open. The stream ends when the client
// disconnects or a terminal event arrives.
func (s *Server) streamEvents(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	flusher, ok := w.(http.Flusher)
	if !ok {
		s.respondError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}

	events, cancel := s.hub.Subscribe(episodeID)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	s.logger.Info("event stream opened", "episode_id", episodeID)
	defer s.logger.Info("event stream closed", "episode_id", episodeID)

	keepalive := time.NewTimer(s.keepalive)
	defer keepalive.Stop()

	for {
		select {
		case <-r.Context().Done():
			return
		case <-keepalive.C:
			if err := writeSSE(w, flusher, notify.Keepalive()); err != nil {
				return
			}
			keepalive.Reset(s.keepalive)
		case event, open := <-events:
			if !open {
				return
			}
			if err := writeSSE(w, flusher, event); err != nil {
				return
			}
			if event.Terminal() {
				return
			}
			if !keepalive.Stop() {
				select {
				case <-keepalive.C:
				default:
				}
			}
			keepalive.Reset(s.keepalive)
		}
	}
}

func writeSSE(w http.ResponseWriter, flusher http.Flusher, event notify.Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return err
	}
	if _, err := w.Write([]byte("data: ")); err != nil {
		return err
	}
	if _, err := w.Write(payload); err != nil {
		return err
	}
	if _, err := w.Write([]byte("\n\n")); err != nil {
		return err
	}
	flusher.Flush()
	return nil
}

// publishEvent accepts one event object and fans it out to the episode's
// subscribers. Remote workers use this to push progress into the hub.
func (s *Server) publishEvent(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")

	var event notify.Event
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid event body")
		return
	}
	if event.Type == "" {
		s.respondError(w, http.StatusBadRequest, "event type required")
		return
	}
	s.hub.Publish(episodeID, event)
	w.WriteHeader(http.StatusNoContent)
}
