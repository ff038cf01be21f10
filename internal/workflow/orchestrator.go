// Package workflow coordinates the transcription pipeline for one episode:
// fetch, convert, transcribe, persist, with progress events published along
// the way.
package workflow

import (
	"context"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"podscribe/internal/config"
	"podscribe/internal/media"
	"podscribe/internal/notify"
	"podscribe/internal/services"
	"podscribe/internal/store"
)

// Job describes one transcription request.
type Job struct {
	EpisodeID       string
	PodcastName     string
	EpisodeTitle    string
	AudioURL        string
	PublicationDate string
	// SessionID links the job back to a queue entry; empty when the job
	// was submitted directly.
	SessionID string
}

// Downloader fetches remote audio into a local scratch file.
type Downloader interface {
	Download(ctx context.Context, rawURL string) (string, error)
}

// Engine produces text from prepared audio.
type Engine interface {
	EnsureModel(ctx context.Context) error
	EnsureBinary(ctx context.Context) error
	Transcribe(ctx context.Context, wavPath string, onLine func(string)) (string, error)
}

// Publisher receives progress events for an episode.
type Publisher interface {
	Publish(episodeID string, event notify.Event)
}

type convertFunc func(ctx context.Context, ffmpegBinary, inputPath, outputPath string) error

// Orchestrator runs transcription jobs end to end.
type Orchestrator struct {
	store     *store.Store
	fetcher   Downloader
	engine    Engine
	publisher Publisher
	convert   convertFunc
	ffmpeg    string
	logger    *slog.Logger
}

// NewOrchestrator wires the pipeline stages together.
func NewOrchestrator(cfg *config.Config, st *store.Store, fetcher Downloader, engine Engine, publisher Publisher, logger *slog.Logger) *Orchestrator {
	if logger == nil {
		logger = slog.Default()
	}
	return &Orchestrator{
		store:     st,
		fetcher:   fetcher,
		engine:    engine,
		publisher: publisher,
		convert:   media.ConvertToWAV,
		ffmpeg:    cfg.Engine.FFmpegBinary,
		logger:    logger.With("component", "workflow"),
	}
}

// Run executes one job. The returned error is for the caller's log only;
// clients learn about failures through the error event on the episode's
// channel, never through the submitting request.
func (o *Orchestrator) Run(ctx context.Context, job Job) (err error) {
	runID := uuid.NewString()
	ctx = services.WithRunID(ctx, runID)
	ctx = services.WithEpisodeID(ctx, job.EpisodeID)
	logger := o.logger.With("run_id", runID, "episode_id", job.EpisodeID,
		"podcast", job.PodcastName, "episode", job.EpisodeTitle)
	logger.Info("job started")

	o.markQueue(ctx, job, store.StatusInProgress)
	defer func() {
		if err != nil {
			step, _ := services.StepFromContext(ctx)
			logger.Error("job failed", "step", step, "error", err)
			o.publisher.Publish(job.EpisodeID, notify.ErrorEvent(err.Error()))
			o.markQueue(ctx, job, store.StatusError)
			return
		}
		logger.Info("job completed")
		o.markQueue(ctx, job, store.StatusSuccess)
	}()

	ctx = services.WithStep(ctx, "checking")
	existing, err := o.store.GetTranscript(ctx, job.PodcastName, job.EpisodeTitle)
	if err != nil {
		return services.Wrap(services.ErrPersistence, "checking", "transcript lookup", "", err)
	}
	if existing != nil && existing.Text != "" {
		logger.Info("transcript already stored, skipping pipeline")
		o.publisher.Publish(job.EpisodeID, notify.ExistingTranscript(existing.Text))
		o.publisher.Publish(job.EpisodeID, notify.TranscriptionComplete(""))
		return nil
	}

	ctx = services.WithStep(ctx, "fetching")
	audioPath, err := o.fetcher.Download(ctx, job.AudioURL)
	if err != nil {
		return err
	}
	wavPath := audioPath + ".wav"
	defer func() {
		removeIfPresent(logger, audioPath)
		removeIfPresent(logger, wavPath)
	}()

	ctx = services.WithStep(ctx, "converting")
	if err := o.convert(ctx, o.ffmpeg, audioPath, wavPath); err != nil {
		return err
	}

	ctx = services.WithStep(ctx, "transcribing")
	if err := o.engine.EnsureBinary(ctx); err != nil {
		return err
	}
	if err := o.engine.EnsureModel(ctx); err != nil {
		return err
	}
	text, err := o.engine.Transcribe(ctx, wavPath, func(line string) {
		o.publisher.Publish(job.EpisodeID, notify.TranscriptionText(line))
	})
	if err != nil {
		return err
	}

	ctx = services.WithStep(ctx, "persisting")
	if _, _, err := o.store.UpsertTranscript(ctx, job.PodcastName, job.EpisodeTitle, text, parsePublicationDate(job.PublicationDate)); err != nil {
		return services.Wrap(services.ErrPersistence, "persisting", "transcript upsert", "", err)
	}

	o.publisher.Publish(job.EpisodeID, notify.TranscriptionComplete(text))
	return nil
}

func (o *Orchestrator) markQueue(ctx context.Context, job Job, status store.Status) {
	if job.SessionID == "" {
		return
	}
	if _, err := o.store.UpdateQueueStatus(ctx, job.SessionID, job.EpisodeID, status); err != nil {
		o.logger.Warn("queue status update failed",
			"session_id", job.SessionID, "episode_id", job.EpisodeID,
			"status", string(status), "error", err)
	}
}

// parsePublicationDate accepts RFC 3339 timestamps; anything else is treated
// as absent rather than failing the job.
func parsePublicationDate(raw string) *time.Time {
	if raw == "" {
		return nil
	}
	parsed, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		return nil
	}
	return &parsed
}

func removeIfPresent(logger *slog.Logger, path string) {
	if path == "" {
		return
	}
	if err := os.Remove(path); err != nil && !os.IsNotExist(err) {
		logger.Warn("scratch cleanup failed", "path", path, "error", err)
	}
}
