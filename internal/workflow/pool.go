package workflow

import (
	"context"
	"errors"
	"log/slog"
	"sync"

	"podscribe/internal/services"
)

// ErrSaturated is returned by Submit when every worker slot is busy. Callers
// surface this as backpressure instead of queueing unbounded work.
var ErrSaturated = errors.New("all transcription workers busy")

// Runner is the job execution surface the pool drives. Orchestrator
// satisfies it.
type Runner interface {
	Run(ctx context.Context, job Job) error
}

// Pool runs jobs on a fixed set of worker goroutines with a bounded intake.
type Pool struct {
	runner Runner
	jobs   chan Job
	logger *slog.Logger

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewPool starts workers many goroutines pulling from a bounded intake
// channel. The pool accepts at most workers jobs beyond those in flight.
func NewPool(runner Runner, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		runner: runner,
		jobs:   make(chan Job, workers),
		logger: logger.With("component", "workflow"),
		ctx:    ctx,
		cancel: cancel,
	}
	for i := 0; i < workers; i++ {
		p.wg.Add(1)
		go p.work()
	}
	return p
}

// Submit hands a job to the pool without blocking. ErrSaturated means the
// intake is full and the caller should report the service as busy.
func (p *Pool) Submit(job Job) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.closed {
		return errors.New("worker pool closed")
	}
	select {
	case p.jobs <- job:
		return nil
	default:
		return ErrSaturated
	}
}

// Close stops intake, lets queued and in-flight jobs finish, and returns when
// all workers have exited.
func (p *Pool) Close() {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return
	}
	p.closed = true
	close(p.jobs)
	p.mu.Unlock()

	p.wg.Wait()
	p.cancel()
}

func (p *Pool) work() {
	defer p.wg.Done()
	for job := range p.jobs {
		if err := p.runner.Run(p.ctx, job); err != nil {
			if services.IsFatal(err) {
				p.logger.Error("job run failed", "episode_id", job.EpisodeID, "error", err)
			} else {
				p.logger.Warn("job run degraded", "episode_id", job.EpisodeID, "error", err)
			}
		}
	}
}
