// Package api exposes the HTTP surface: transcription submission, progress
// streams, search, and the library and queue collections.
package api

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"podscribe/internal/config"
	"podscribe/internal/feeds"
	"podscribe/internal/itunes"
	"podscribe/internal/notify"
	"podscribe/internal/store"
	"podscribe/internal/workflow"
)

// sessionHeader identifies the browsing session owning a queue. Requests
// without it share one default session.
const (
	sessionHeader  = "X-Session-ID"
	defaultSession = "default"
)

// Submitter accepts jobs for background execution.
type Submitter interface {
	Submit(job workflow.Job) error
}

// Server holds the handler dependencies and the router.
type Server struct {
	logger    *slog.Logger
	router    *chi.Mux
	store     *store.Store
	hub       *notify.Hub
	pool      Submitter
	itunes    *itunes.Client
	feeds     *feeds.Reader
	keepalive time.Duration
}

// NewServer wires routes onto a chi router.
func NewServer(cfg *config.Config, st *store.Store, hub *notify.Hub, pool Submitter, itunesClient *itunes.Client, feedReader *feeds.Reader, logger *slog.Logger) *Server {
	if logger == nil {
		logger = slog.Default()
	}
	keepalive := time.Duration(cfg.Events.KeepaliveInterval) * time.Second
	if keepalive <= 0 {
		keepalive = 20 * time.Second
	}
	s := &Server{
		logger:    logger.With("component", "api"),
		router:    chi.NewRouter(),
		store:     st,
		hub:       hub,
		pool:      pool,
		itunes:    itunesClient,
		feeds:     feedReader,
		keepalive: keepalive,
	}
	s.registerRoutes()
	return s
}

// Router returns the http.Handler for the server.
func (s *Server) Router() http.Handler {
	return s.router
}

func (s *Server) registerRoutes() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(middleware.Recoverer)

	s.router.Post("/api/transcribe", s.startTranscription)
	s.router.Get("/events/{episodeID}", s.streamEvents)
	s.router.Post("/events/{episodeID}", s.publishEvent)

	s.router.Get("/api/search", s.searchPodcasts)
	s.router.Get("/api/podcasts/{collectionID}/episodes", s.podcastEpisodes)

	s.router.Get("/api/library", s.listLibrary)
	s.router.Post("/api/library", s.addLibraryItem)
	s.router.Delete("/api/library/{collectionID}", s.removeLibraryItem)

	s.router.Get("/api/queue", s.listQueue)
	s.router.Post("/api/queue", s.enqueueEpisode)
	s.router.Delete("/api/queue/{episodeID}", s.dequeueEpisode)
	s.router.Patch("/api/queue/{episodeID}", s.updateQueueStatus)

	s.router.Get("/healthz", s.health)
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	s.respondJSON(w, http.StatusOK, map[string]string{
		"status":    "ok",
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}

func (s *Server) respondJSON(w http.ResponseWriter, code int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	if err := json.NewEncoder(w).Encode(payload); err != nil {
		s.logger.Error("encode response failed", "error", err)
	}
}

func (s *Server) respondError(w http.ResponseWriter, code int, message string) {
	s.respondJSON(w, code, map[string]string{"error": message})
}

func sessionID(r *http.Request) string {
	if id := r.Header.Get(sessionHeader); id != "" {
		return id
	}
	return defaultSession
}
