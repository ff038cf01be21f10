package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"

	"podscribe/internal/store"
)

type queueItemPayload struct {
	EpisodeID       string `json:"episode_id"`
	EpisodeTitle    string `json:"episode_title"`
	AudioURL        string `json:"audio_url"`
	PodcastName     string `json:"podcast_name"`
	PublicationDate string `json:"publication_date,omitempty"`
	Status          string `json:"status"`
	CreatedAt       string `json:"created_at,omitempty"`
}

func fromQueueItem(item *store.QueueItem) queueItemPayload {
	payload := queueItemPayload{
		EpisodeID:       item.EpisodeID,
		EpisodeTitle:    item.EpisodeTitle,
		AudioURL:        item.AudioURL,
		PodcastName:     item.PodcastName,
		PublicationDate: item.PublicationDate,
		Status:          string(item.Status),
	}
	if !item.CreatedAt.IsZero() {
		payload.CreatedAt = item.CreatedAt.UTC().Format(time.RFC3339)
	}
	return payload
}

func (s *Server) listQueue(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.QueueForSession(r.Context(), sessionID(r))
	if err != nil {
		s.logger.Error("queue list failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "queue list failed")
		return
	}
	payload := make([]queueItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, fromQueueItem(item))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"items": payload})
}

func (s *Server) enqueueEpisode(w http.ResponseWriter, r *http.Request) {
	var req queueItemPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid queue item body")
		return
	}
	if strings.TrimSpace(req.EpisodeID) == "" || strings.TrimSpace(req.AudioURL) == "" {
		s.respondError(w, http.StatusBadRequest, "episode_id and audio_url required")
		return
	}

	item, err := s.store.Enqueue(r.Context(), store.QueueItem{
		SessionID:       sessionID(r),
		EpisodeID:       strings.TrimSpace(req.EpisodeID),
		EpisodeTitle:    strings.TrimSpace(req.EpisodeTitle),
		AudioURL:        strings.TrimSpace(req.AudioURL),
		PodcastName:     strings.TrimSpace(req.PodcastName),
		PublicationDate: strings.TrimSpace(req.PublicationDate),
	})
	if err != nil {
		if errors.Is(err, store.ErrAlreadyQueued) {
			s.respondJSON(w, http.StatusOK, map[string]string{"status": "already_in_queue"})
			return
		}
		s.logger.Error("enqueue failed", "episode_id", req.EpisodeID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "enqueue failed")
		return
	}
	s.logger.Info("episode queued", "episode_id", item.EpisodeID, "podcast", item.PodcastName)
	s.respondJSON(w, http.StatusCreated, map[string]any{"status": "queued", "item": fromQueueItem(item)})
}

func (s *Server) dequeueEpisode(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")
	removed, err := s.store.DequeueEpisode(r.Context(), sessionID(r), episodeID)
	if err != nil {
		s.logger.Error("dequeue failed", "episode_id", episodeID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "dequeue failed")
		return
	}
	if !removed {
		s.respondError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}

func (s *Server) updateQueueStatus(w http.ResponseWriter, r *http.Request) {
	episodeID := chi.URLParam(r, "episodeID")

	var req struct {
		Status string `json:"status"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid status body")
		return
	}
	status, ok := store.ParseStatus(req.Status)
	if !ok {
		s.respondError(w, http.StatusBadRequest, "unknown status "+req.Status)
		return
	}

	updated, err := s.store.UpdateQueueStatus(r.Context(), sessionID(r), episodeID, status)
	if err != nil {
		s.logger.Error("queue status update failed", "episode_id", episodeID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "queue status update failed")
		return
	}
	if !updated {
		s.respondError(w, http.StatusNotFound, "queue item not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": string(status)})
}
