// Package daemon owns the long-running service: single-instance locking,
// store recovery, the worker pool, and the HTTP server lifecycle.
package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"path/filepath"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"podscribe/internal/api"
	"podscribe/internal/config"
	"podscribe/internal/deps"
	"podscribe/internal/feeds"
	"podscribe/internal/fetch"
	"podscribe/internal/itunes"
	"podscribe/internal/notify"
	"podscribe/internal/services/whispercpp"
	"podscribe/internal/store"
	"podscribe/internal/workflow"
)

// Daemon wires the application together and enforces one instance per data
// directory.
type Daemon struct {
	cfg    *config.Config
	logger *slog.Logger
	store  *store.Store
	hub    *notify.Hub
	pool   *workflow.Pool
	server *http.Server

	lockPath string
	lock     *flock.Flock

	running atomic.Bool
	addr    atomic.Value // string
}

// Status is a snapshot of the running daemon for logging and CLI display.
type Status struct {
	Running      bool
	Bind         string
	DatabasePath string
	LockFilePath string
}

// New constructs the daemon and everything it will run.
func New(cfg *config.Config, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires configuration")
	}
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "daemon")

	st, err := store.Open(cfg)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	hub := notify.NewHub(cfg.Events.ChannelBuffer, logger)
	engine := whispercpp.New(cfg, logger)
	fetcher := fetch.New(cfg, logger)
	orchestrator := workflow.NewOrchestrator(cfg, st, fetcher, engine, eventPublisher(cfg, hub, logger), logger)
	pool := workflow.NewPool(orchestrator, cfg.Workflow.MaxActiveJobs, logger)

	apiServer := api.NewServer(cfg, st, hub, pool, itunes.New(cfg), feeds.NewReader(), logger)

	lockPath := filepath.Join(cfg.Paths.DataDir, "podscribe.lock")
	return &Daemon{
		cfg:    cfg,
		logger: logger,
		store:  st,
		hub:    hub,
		pool:   pool,
		server: &http.Server{
			Addr:              cfg.Paths.Bind,
			Handler:           apiServer.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		},
		lockPath: lockPath,
		lock:     flock.New(lockPath),
	}, nil
}

// eventPublisher picks where job progress goes: the in-process hub by default,
// or a remote instance's event endpoint when one is configured.
func eventPublisher(cfg *config.Config, hub *notify.Hub, logger *slog.Logger) workflow.Publisher {
	if url := cfg.Events.RemoteURL; url != "" {
		logger.Info("publishing job events to remote endpoint", "url", url)
		return notify.NewPublisher(url, logger)
	}
	return hub
}

// Run starts the daemon and blocks until ctx is cancelled or the HTTP server
// fails. Shutdown is graceful: intake stops, in-flight jobs drain, then the
// store closes.
func (d *Daemon) Run(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another podscribe instance is already running")
	}
	defer func() {
		if err := d.lock.Unlock(); err != nil {
			d.logger.Warn("lock release failed", "error", err)
		}
	}()

	for _, status := range deps.CheckBinaries(deps.Requirements(d.cfg)) {
		if status.Available {
			continue
		}
		if status.Optional {
			d.logger.Info("optional dependency unavailable",
				"name", status.Name, "detail", status.Detail)
			continue
		}
		d.logger.Warn("required dependency unavailable, jobs will fail",
			"name", status.Name, "detail", status.Detail)
	}

	// Jobs interrupted by a previous crash go back to pending, finished
	// ones age out.
	reset, pruned, err := d.store.NormalizeQueues(ctx)
	if err != nil {
		return fmt.Errorf("normalize queues: %w", err)
	}
	if reset > 0 || pruned > 0 {
		d.logger.Info("queue recovery complete", "reset", reset, "pruned", pruned)
	}

	listener, err := net.Listen("tcp", d.server.Addr)
	if err != nil {
		return fmt.Errorf("listen on %s: %w", d.server.Addr, err)
	}
	d.addr.Store(listener.Addr().String())
	d.running.Store(true)
	defer d.running.Store(false)

	d.logger.Info("podscribe daemon started",
		"bind", listener.Addr().String(), "database", d.store.Path(), "lock", d.lockPath)

	serveErr := make(chan error, 1)
	go func() {
		serveErr <- d.server.Serve(listener)
	}()

	select {
	case <-ctx.Done():
		d.logger.Info("shutdown requested")
	case err := <-serveErr:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.shutdown()
			return fmt.Errorf("http server: %w", err)
		}
	}

	d.shutdown()
	return nil
}

func (d *Daemon) shutdown() {
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()
	if err := d.server.Shutdown(shutdownCtx); err != nil {
		d.logger.Warn("http shutdown failed", "error", err)
	}

	d.pool.Close()
	if err := d.store.Close(); err != nil {
		d.logger.Warn("store close failed", "error", err)
	}
	d.logger.Info("podscribe daemon stopped")
}

// Addr reports the bound listen address once Run has started the server.
func (d *Daemon) Addr() string {
	if addr, ok := d.addr.Load().(string); ok {
		return addr
	}
	return d.cfg.Paths.Bind
}

// Status returns the current daemon status.
func (d *Daemon) Status() Status {
	return Status{
		Running:      d.running.Load(),
		Bind:         d.Addr(),
		DatabasePath: d.store.Path(),
		LockFilePath: d.lockPath,
	}
}
