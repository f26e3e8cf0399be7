// Package worker runs queued jobs on a fixed pool of goroutines.
package worker

import (
	"context"
	"fmt"
	"runtime"
	"strconv"
	"sync"
	"time"

	"github.com/okian/liao/pkg/logger"
	"github.com/okian/liao/pkg/metrics"
)

// Default worker configuration constants.
const (
	poolShutdownTimeout = 30 * time.Second
)

// Handler processes one job. Errors are logged and counted; they do not stop
// the worker.
type Handler[T any] func(ctx context.Context, job T) error

// Source is where workers receive jobs from.
type Source[T any] interface {
	Dequeue(ctx context.Context) <-chan T
}

// Worker processes jobs until its source is drained or it is stopped.
type Worker interface {
	// Run starts the worker loop until ctx is canceled.
	Run(ctx context.Context)

	// Shutdown stops the worker without draining.
	Shutdown(ctx context.Context) error
}

// InMemoryWorker implements Worker for a channel-backed source.
type InMemoryWorker[T any] struct {
	source Source[T]
	handle Handler[T]
	name   string

	shutdown     chan struct{}
	shutdownOnce sync.Once
	done         chan struct{}

	logger logger.Logger
}

// NewInMemoryWorker creates a new worker with configuration options.
func NewInMemoryWorker[T any](source Source[T], handle Handler[T], opts ...Option) *InMemoryWorker[T] {
	s := settings{name: "worker"}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Named("worker")
	}
	if s.name != "worker" {
		s.logger = s.logger.Named(s.name)
	}

	return &InMemoryWorker[T]{
		source:   source,
		handle:   handle,
		name:     s.name,
		shutdown: make(chan struct{}),
		done:     make(chan struct{}),
		logger:   s.logger,
	}
}

// Run starts the worker loop.
func (w *InMemoryWorker[T]) Run(ctx context.Context) {
	metrics.AddWorkerActive(1)
	defer func() {
		metrics.AddWorkerActive(-1)
		close(w.done)
	}()

	jobs := w.source.Dequeue(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-w.shutdown:
			return
		case job, ok := <-jobs:
			if !ok {
				return
			}
			if err := w.process(ctx, job); err != nil {
				w.logger.Debug(ctx, "job failed", logger.Error(err))
			}
		}
	}
}

// Done is closed when Run returns.
func (w *InMemoryWorker[T]) Done() <-chan struct{} {
	return w.done
}

// Shutdown signals the worker to stop and waits for Run to return.
func (w *InMemoryWorker[T]) Shutdown(ctx context.Context) error {
	w.shutdownOnce.Do(func() { close(w.shutdown) })

	select {
	case <-w.done:
		return nil
	case <-ctx.Done():
		w.logger.Warn(ctx, "shutdown timed out")
		return fmt.Errorf("shutdown timed out: %w", ctx.Err())
	}
}

func (w *InMemoryWorker[T]) process(ctx context.Context, job T) (err error) {
	start := time.Now()
	defer func() {
		outcome := "ok"
		if err != nil {
			outcome = "error"
		}
		metrics.RecordWorkerJob(outcome, float64(time.Since(start).Milliseconds()))
	}()

	if err := w.handle(ctx, job); err != nil {
		return fmt.Errorf("%s: %w", w.name, err)
	}
	return nil
}

// Pool manages multiple workers sharing one source.
type Pool[T any] struct {
	workers      []*InMemoryWorker[T]
	source       Source[T]
	logger       logger.Logger
	drainTimeout time.Duration
}

// NewPool creates a pool of workerCount workers. A count below one uses
// runtime.NumCPU().
func NewPool[T any](workerCount int, source Source[T], handle Handler[T], opts ...Option) *Pool[T] {
	if workerCount < 1 {
		workerCount = runtime.NumCPU()
	}

	s := settings{drainTimeout: poolShutdownTimeout}
	for _, opt := range opts {
		opt(&s)
	}
	if s.logger == nil {
		s.logger = logger.Named("worker-pool")
	}

	pool := &Pool[T]{
		workers:      make([]*InMemoryWorker[T], workerCount),
		source:       source,
		logger:       s.logger,
		drainTimeout: s.drainTimeout,
	}
	for i := 0; i < workerCount; i++ {
		pool.workers[i] = NewInMemoryWorker(source, handle,
			WithName("worker-"+strconv.Itoa(i)),
			WithLogger(s.logger),
		)
	}
	return pool
}

// Size returns the number of workers.
func (p *Pool[T]) Size() int {
	return len(p.workers)
}

// Start starts all workers in the pool.
func (p *Pool[T]) Start(ctx context.Context) {
	for _, w := range p.workers {
		go w.Run(ctx)
	}
}

// Wait blocks until every worker has returned, which happens once the source
// is closed and drained or ctx is canceled.
func (p *Pool[T]) Wait(ctx context.Context) error {
	for _, w := range p.workers {
		select {
		case <-w.done:
		case <-ctx.Done():
			return fmt.Errorf("waiting for workers: %w", ctx.Err())
		}
	}
	return nil
}

// Shutdown closes the source when it supports Close, lets workers drain it,
// then stops any worker still running after the drain timeout. A forced
// stop returns ErrDrainTimeout.
func (p *Pool[T]) Shutdown(ctx context.Context) error {
	if closer, ok := p.source.(interface{ Close() error }); ok {
		if err := closer.Close(); err != nil {
			p.logger.Error(ctx, "error closing queue", logger.Error(err))
		}
	}

	drainCtx, cancel := context.WithTimeout(ctx, p.drainTimeout)
	defer cancel()
	if err := p.Wait(drainCtx); err == nil {
		return nil
	}

	stopCtx, stopCancel := context.WithTimeout(context.WithoutCancel(ctx), p.drainTimeout)
	defer stopCancel()
	busy := 0
	for i, w := range p.workers {
		if err := w.Shutdown(stopCtx); err != nil {
			busy++
			p.logger.Warn(ctx, "worker shutdown timed out", logger.Int("worker_id", i))
		}
	}
	return fmt.Errorf("%w within %s, %d workers still busy", ErrDrainTimeout, p.drainTimeout, busy)
}
