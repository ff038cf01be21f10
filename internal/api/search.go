package api

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
)

func (s *Server) searchPodcasts(w http.ResponseWriter, r *http.Request) {
	term := strings.TrimSpace(r.URL.Query().Get("q"))
	if term == "" {
		s.respondError(w, http.StatusBadRequest, "query parameter q required")
		return
	}

	podcasts, err := s.itunes.Search(r.Context(), term)
	if err != nil {
		s.logger.Error("podcast search failed", "term", term, "error", err)
		s.respondError(w, http.StatusBadGateway, "podcast search failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": podcasts})
}

// podcastEpisodes lists a podcast's episodes. Library entries that carry a
// feed URL are read directly from the feed; everything else goes through the
// search API lookup.
func (s *Server) podcastEpisodes(w http.ResponseWriter, r *http.Request) {
	collectionID := chi.URLParam(r, "collectionID")

	item, err := s.store.GetLibraryItem(r.Context(), collectionID)
	if err != nil {
		s.logger.Error("library lookup failed", "collection_id", collectionID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "library lookup failed")
		return
	}
	if item != nil && item.FeedURL != "" {
		episodes, err := s.feeds.Episodes(r.Context(), item.FeedURL)
		if err == nil {
			s.respondJSON(w, http.StatusOK, map[string]any{"results": episodes})
			return
		}
		s.logger.Warn("feed read failed, falling back to lookup",
			"collection_id", collectionID, "feed_url", item.FeedURL, "error", err)
	}

	episodes, err := s.itunes.Episodes(r.Context(), collectionID)
	if err != nil {
		s.logger.Error("episode lookup failed", "collection_id", collectionID, "error", err)
		s.respondError(w, http.StatusBadGateway, "episode lookup failed")
		return
	}
	s.respondJSON(w, http.StatusOK, map[string]any{"results": episodes})
}
