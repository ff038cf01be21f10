package daemon_test

import (
	"context"
	"net/http"
	"testing"
	"time"

	"podscribe/internal/daemon"
	"podscribe/internal/logging"
	"podscribe/internal/store"
	"podscribe/internal/testsupport"
)

func startDaemon(t *testing.T, d *daemon.Daemon) (cancel context.CancelFunc, done chan error) {
	t.Helper()
	ctx, cancelFn := context.WithCancel(context.Background())
	done = make(chan error, 1)
	go func() {
		done <- d.Run(ctx)
	}()

	deadline := time.Now().Add(10 * time.Second)
	for !d.Status().Running && time.Now().Before(deadline) {
		time.Sleep(10 * time.Millisecond)
	}
	if !d.Status().Running {
		cancelFn()
		t.Fatal("daemon never reported running")
	}
	return cancelFn, done
}

func TestRunServesAndShutsDownGracefully(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	cancel, done := startDaemon(t, d)

	resp, err := http.Get("http://" + d.Addr() + "/healthz")
	if err != nil {
		t.Fatalf("health check: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("health status = %d", resp.StatusCode)
	}

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(10 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestRunRefusesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	first, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cancel, done := startDaemon(t, first)
	defer func() {
		cancel()
		<-done
	}()

	second, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Run(context.Background()); err == nil {
		t.Fatal("second instance should refuse to start")
	}
}

func TestRunNormalizesQueuesOnStartup(t *testing.T) {
	cfg := testsupport.NewConfig(t)

	// Seed a stuck in-progress item, as left behind by a crash.
	seed, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open seed store: %v", err)
	}
	ctx := context.Background()
	if _, err := seed.Enqueue(ctx, store.QueueItem{
		SessionID: "session-a",
		EpisodeID: "ep-1",
		AudioURL:  "https://example.com/1.mp3",
	}); err != nil {
		t.Fatalf("seed enqueue: %v", err)
	}
	if _, err := seed.UpdateQueueStatus(ctx, "session-a", "ep-1", store.StatusInProgress); err != nil {
		t.Fatalf("seed status: %v", err)
	}
	if err := seed.Close(); err != nil {
		t.Fatalf("close seed store: %v", err)
	}

	d, err := daemon.New(cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	cancel, done := startDaemon(t, d)
	defer func() {
		cancel()
		<-done
	}()

	check, err := store.Open(cfg)
	if err != nil {
		t.Fatalf("open check store: %v", err)
	}
	defer check.Close()
	items, err := check.AllQueueItems(ctx)
	if err != nil {
		t.Fatalf("AllQueueItems: %v", err)
	}
	if len(items) != 1 || items[0].Status != store.StatusPending {
		t.Fatalf("queue after recovery = %+v", items)
	}
}
