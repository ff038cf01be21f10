package workflow_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"podscribe/internal/logging"
	"podscribe/internal/notify"
	"podscribe/internal/services"
	"podscribe/internal/store"
	"podscribe/internal/testsupport"
	"podscribe/internal/workflow"
)

type fakeDownloader struct {
	dir   string
	calls int
	err   error
}

func (f *fakeDownloader) Download(_ context.Context, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	path := filepath.Join(f.dir, "episode.mp3")
	if err := os.WriteFile(path, []byte("audio"), 0o644); err != nil {
		return "", err
	}
	return path, nil
}

type fakeEngine struct {
	lines []string
	err   error
}

func (f *fakeEngine) EnsureModel(context.Context) error  { return nil }
func (f *fakeEngine) EnsureBinary(context.Context) error { return nil }

func (f *fakeEngine) Transcribe(_ context.Context, _ string, onLine func(string)) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	for _, line := range f.lines {
		if onLine != nil {
			onLine(line)
		}
	}
	return strings.Join(f.lines, " "), nil
}

type eventRecorder struct {
	mu     sync.Mutex
	events []notify.Event
}

func (r *eventRecorder) Publish(_ string, event notify.Event) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, event)
}

func (r *eventRecorder) all() []notify.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]notify.Event(nil), r.events...)
}

func TestRunTranscribesAndPersists(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	downloader := &fakeDownloader{dir: t.TempDir()}
	engine := &fakeEngine{lines: []string{"Welcome back.", "Today we talk Go."}}
	recorder := &eventRecorder{}

	orch := workflow.NewOrchestrator(cfg, st, downloader, engine, recorder, logging.NewNop())
	job := workflow.Job{
		EpisodeID:       "ep-1",
		PodcastName:     "Go Time",
		EpisodeTitle:    "Episode 1",
		AudioURL:        "https://example.com/ep1.mp3",
		PublicationDate: "2024-03-01T10:00:00Z",
	}
	if err := orch.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}

	saved, err := st.GetTranscript(context.Background(), "Go Time", "Episode 1")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if saved == nil || saved.Text != "Welcome back. Today we talk Go." {
		t.Fatalf("stored transcript = %+v", saved)
	}
	if saved.PublicationDate == nil || !saved.PublicationDate.Equal(time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC)) {
		t.Errorf("publication date = %v", saved.PublicationDate)
	}

	events := recorder.all()
	wantTypes := []string{
		notify.TypeTranscriptionText,
		notify.TypeTranscriptionText,
		notify.TypeTranscriptionComplete,
	}
	if len(events) != len(wantTypes) {
		t.Fatalf("events = %+v", events)
	}
	for i, want := range wantTypes {
		if events[i].Type != want {
			t.Errorf("event %d type = %q, want %q", i, events[i].Type, want)
		}
	}
	if final := events[len(events)-1]; final.Text != "Welcome back. Today we talk Go." {
		t.Errorf("complete event text = %q", final.Text)
	}

	if _, err := os.Stat(filepath.Join(downloader.dir, "episode.mp3")); !os.IsNotExist(err) {
		t.Error("downloaded audio should be removed after the run")
	}
}

func TestRunShortCircuitsOnExistingTranscript(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	st := testsupport.MustOpenStore(t, cfg)
	if _, _, err := st.UpsertTranscript(context.Background(), "Go Time", "Episode 1", "already here", nil); err != nil {
		t.Fatalf("seed transcript: %v", err)
	}

	downloader := &fakeDownloader{dir: t.TempDir()}
	recorder := &eventRecorder{}
	orch := workflow.NewOrchestrator(cfg, st, downloader, &fakeEngine{}, recorder, logging.NewNop())

	job := workflow.Job{
		EpisodeID:    "ep-1",
		PodcastName:  "Go Time",
		EpisodeTitle: "Episode 1",
		AudioURL:     "https://example.com/ep1.mp3",
	}
	if err := orch.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}

	if downloader.calls != 0 {
		t.Errorf("downloader called %d times for cached transcript", downloader.calls)
	}
	events := recorder.all()
	if len(events) != 2 {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Type != notify.TypeExistingTranscript || events[0].Text != "already here" {
		t.Errorf("first event = %+v", events[0])
	}
	if events[1].Type != notify.TypeTranscriptionComplete {
		t.Errorf("second event = %+v", events[1])
	}
}

func TestRunPublishesSingleErrorEvent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	downloader := &fakeDownloader{dir: t.TempDir()}
	engine := &fakeEngine{err: services.Wrap(services.ErrEngine, "transcribing", "run", "engine exited", errors.New("exit status 3"))}
	recorder := &eventRecorder{}
	orch := workflow.NewOrchestrator(cfg, st, downloader, engine, recorder, logging.NewNop())

	job := workflow.Job{
		EpisodeID:    "ep-1",
		PodcastName:  "Go Time",
		EpisodeTitle: "Episode 1",
		AudioURL:     "https://example.com/ep1.mp3",
	}
	err := orch.Run(context.Background(), job)
	if !errors.Is(err, services.ErrEngine) {
		t.Fatalf("Run error = %v", err)
	}

	events := recorder.all()
	if len(events) != 1 || events[0].Type != notify.TypeError {
		t.Fatalf("events = %+v", events)
	}
	if events[0].Message == "" {
		t.Error("error event should carry a message")
	}
	if _, err := os.Stat(filepath.Join(downloader.dir, "episode.mp3")); !os.IsNotExist(err) {
		t.Error("downloaded audio should be removed after a failed run")
	}
}

func TestRunUpdatesQueueStatus(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	if _, err := st.Enqueue(context.Background(), store.QueueItem{
		SessionID:    "session-a",
		EpisodeID:    "ep-1",
		EpisodeTitle: "Episode 1",
		AudioURL:     "https://example.com/ep1.mp3",
		PodcastName:  "Go Time",
	}); err != nil {
		t.Fatalf("Enqueue: %v", err)
	}

	orch := workflow.NewOrchestrator(cfg, st,
		&fakeDownloader{dir: t.TempDir()},
		&fakeEngine{lines: []string{"text"}},
		&eventRecorder{}, logging.NewNop())

	job := workflow.Job{
		EpisodeID:    "ep-1",
		PodcastName:  "Go Time",
		EpisodeTitle: "Episode 1",
		AudioURL:     "https://example.com/ep1.mp3",
		SessionID:    "session-a",
	}
	if err := orch.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}

	items, err := st.AllQueueItems(context.Background())
	if err != nil {
		t.Fatalf("AllQueueItems: %v", err)
	}
	if len(items) != 1 || items[0].Status != store.StatusSuccess {
		t.Fatalf("queue items = %+v", items)
	}
}

func TestRunTreatsInvalidPublicationDateAsAbsent(t *testing.T) {
	cfg := testsupport.NewConfig(t, testsupport.WithStubbedBinaries())
	st := testsupport.MustOpenStore(t, cfg)
	orch := workflow.NewOrchestrator(cfg, st,
		&fakeDownloader{dir: t.TempDir()},
		&fakeEngine{lines: []string{"text"}},
		&eventRecorder{}, logging.NewNop())

	job := workflow.Job{
		EpisodeID:       "ep-1",
		PodcastName:     "Go Time",
		EpisodeTitle:    "Episode 1",
		AudioURL:        "https://example.com/ep1.mp3",
		PublicationDate: "March 1st, 2024",
	}
	if err := orch.Run(context.Background(), job); err != nil {
		t.Fatalf("Run: %v", err)
	}
	saved, err := st.GetTranscript(context.Background(), "Go Time", "Episode 1")
	if err != nil {
		t.Fatalf("GetTranscript: %v", err)
	}
	if saved.PublicationDate != nil {
		t.Errorf("publication date = %v, want nil", saved.PublicationDate)
	}
}
