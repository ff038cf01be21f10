package api

import (
	"encoding/json"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"podscribe/internal/store"
)

type libraryItemPayload struct {
	CollectionID string `json:"collection_id"`
	Name         string `json:"name"`
	Artist       string `json:"artist"`
	ArtworkURL   string `json:"artwork_url"`
	FeedURL      string `json:"feed_url"`
}

func fromLibraryItem(item *store.LibraryItem) libraryItemPayload {
	return libraryItemPayload{
		CollectionID: item.CollectionID,
		Name:         item.Name,
		Artist:       item.Artist,
		ArtworkURL:   item.ArtworkURL,
		FeedURL:      item.FeedURL,
	}
}

func (s *Server) listLibrary(w http.ResponseWriter, r *http.Request) {
	items, err := s.store.ListLibraryItems(r.Context())
	if err != nil {
		s.logger.Error("library list failed", "error", err)
		s.respondError(w, http.StatusInternalServerError, "library list failed")
		return
	}
	payload := make([]libraryItemPayload, 0, len(items))
	for _, item := range items {
		payload = append(payload, fromLibraryItem(item))
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"items": payload})
}

func (s *Server) addLibraryItem(w http.ResponseWriter, r *http.Request) {
	var req libraryItemPayload
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.respondError(w, http.StatusBadRequest, "invalid library item body")
		return
	}
	if strings.TrimSpace(req.CollectionID) == "" || strings.TrimSpace(req.Name) == "" {
		s.respondError(w, http.StatusBadRequest, "collection_id and name required")
		return
	}

	item, created, err := s.store.AddLibraryItem(r.Context(), store.LibraryItem{
		CollectionID: strings.TrimSpace(req.CollectionID),
		Name:         strings.TrimSpace(req.Name),
		Artist:       strings.TrimSpace(req.Artist),
		ArtworkURL:   strings.TrimSpace(req.ArtworkURL),
		FeedURL:      strings.TrimSpace(req.FeedURL),
	})
	if err != nil {
		s.logger.Error("library add failed", "collection_id", req.CollectionID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "library add failed")
		return
	}
	if !created {
		s.respondJSON(w, http.StatusOK, map[string]any{"status": "already_exists", "item": fromLibraryItem(item)})
		return
	}
	s.logger.Info("library item added", "collection_id", item.CollectionID, "name", item.Name)
	s.respondJSON(w, http.StatusCreated, map[string]any{"status": "added", "item": fromLibraryItem(item)})
}

func (s *Server) removeLibraryItem(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")
	removed, err := s.store.RemoveLibraryItem(r.Context(), collectionID)
	if err != nil {
		s.logger.Error("library remove failed", "collection_id", collectionID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "library remove failed")
		return
	}
	if !removed {
		s.respondError(w, http.StatusNotFound, "library item not found")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]string{"status": "removed"})
}
