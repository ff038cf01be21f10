package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"podscribe/internal/workflow"
)

type transcribeRequest struct {
	EpisodeID       string `json:"episode_id"`
	PodcastName     string `json:"podcast_name"`
	EpisodeTitle    string `json:"episode_title"`
	AudioURL        string `json:"audio_url"`
	PublicationDate string `json:"publication_date"`
	SessionID       string `json:"session_id"`
}

func (r transcribeRequest) validate() error {
	missing := make([]string, 0, 4)
	if strings.TrimSpace(r.EpisodeID) == "" {
		missing = append(missing, "episode_id")
	}
	if strings.TrimSpace(r.PodcastName) == "" {
		missing = append(missing, "podcast_name")
	}
	if strings.TrimSpace(r.EpisodeTitle) == "" {
		missing = append(missing, "episode_title")
	}
	if strings.TrimSpace(r.AudioURL) == "" {
		missing = append(missing, "audio_url")
	}
	if len(missing) > 0 {
		return errors.New("missing required fields: " + strings.Join(missing, ", "))
	}
	return nil
}

// startTranscription accepts a job and returns before it runs. The response
// only acknowledges the submission; progress and outcome are delivered on the
// episode's event stream.
func (s *Server) startTranscription(w http.ResponseWriter, r *http.Request) {
	req, err := decodeTranscribeRequest(r)
	if err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}
	if err := req.validate(); err != nil {
		s.respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	job := workflow.Job{
		EpisodeID:       strings.TrimSpace(req.EpisodeID),
		PodcastName:     strings.TrimSpace(req.PodcastName),
		EpisodeTitle:    strings.TrimSpace(req.EpisodeTitle),
		AudioURL:        strings.TrimSpace(req.AudioURL),
		PublicationDate: strings.TrimSpace(req.PublicationDate),
		SessionID:       strings.TrimSpace(req.SessionID),
	}
	if err := s.pool.Submit(job); err != nil {
		if errors.Is(err, workflow.ErrSaturated) {
			s.respondError(w, http.StatusServiceUnavailable, "transcription workers busy, try again later")
			return
		}
		s.logger.Error("job submission failed", "episode_id", job.EpisodeID, "error", err)
		s.respondError(w, http.StatusInternalServerError, "could not submit job")
		return
	}

	s.logger.Info("job submitted", "episode_id", job.EpisodeID, "podcast", job.PodcastName)
	s.respondJSON(w, http.StatusAccepted, map[string]string{"status": "Transcription started"})
}

// decodeTranscribeRequest accepts either a JSON body or a classic HTML form
// post.
func decodeTranscribeRequest(r *http.Request) (transcribeRequest, error) {
	var req transcribeRequest
	contentType := r.Header.Get("Content-Type")
	if strings.HasPrefix(contentType, "application/json") {
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			return req, errors.New("invalid JSON body")
		}
		return req, nil
	}
	if err := r.ParseForm(); err != nil {
		return req, errors.New("invalid form body")
	}
	req.EpisodeID = r.PostFormValue("episode_id")
	req.PodcastName = r.PostFormValue("podcast_name")
	req.EpisodeTitle = r.PostFormValue("episode_title")
	req.AudioURL = r.PostFormValue("audio_url")
	req.PublicationDate = r.PostFormValue("publication_date")
	req.SessionID = r.PostFormValue("session_id")
	return req, nil
}
