package task

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
)

// ErrPoolStopped is returned by futures whose submission was discarded
// because the pool stopped before a worker picked it up.
var ErrPoolStopped = errors.New("worker pool stopped")

// Future carries the eventual outcome of one submission. It resolves
// exactly once; later resolution attempts are ignored.
type Future struct {
	done   chan struct{}
	once   sync.Once
	result any
	err    error
}

func newFuture() *Future {
	return &Future{done: make(chan struct{})}
}

func (f *Future) resolve(result any, err error) {
	f.once.Do(func() {
		f.result = result
		f.err = err
		close(f.done)
	})
}

// Wait blocks until the future resolves or ctx is cancelled. On
// cancellation the work keeps running on its worker; its eventual
// result is discarded.
func (f *Future) Wait(ctx context.Context) (any, error) {
	select {
	case <-f.done:
		return f.result, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

type submission struct {
	ctx context.Context
	fn  WorkFunc
	fut *Future
}

// WorkerPool runs submitted work functions on a fixed set of worker
// goroutines. Submissions beyond the worker count queue without bound;
// the pool never rejects work while running.
type WorkerPool struct {
	mu      sync.Mutex
	cond    *sync.Cond
	queue   []*submission
	stopped bool

	workerCount int
	wg          sync.WaitGroup
	logger      *slog.Logger
}

// DefaultWorkerCount is used when no worker count is configured.
const DefaultWorkerCount = 10

// NewWorkerPool creates a pool and starts its workers.
func NewWorkerPool(workerCount int, logger *slog.Logger) *WorkerPool {
	if workerCount <= 0 {
		logger.Warn("invalid worker count specified, using default",
			"specified_count", workerCount,
			"default_count", DefaultWorkerCount)
		workerCount = DefaultWorkerCount
	}

	p := &WorkerPool{
		workerCount: workerCount,
		logger:      logger.With("component", "worker_pool"),
	}
	p.cond = sync.NewCond(&p.mu)

	for i := 0; i < workerCount; i++ {
		p.wg.Add(1)
		go p.worker(i)
	}

	return p
}

// Submit enqueues fn for execution and returns its future. The ctx is
// the work's cancellation context: if it is already done when a worker
// dequeues the submission, the function is skipped and the future
// resolves with the context error.
func (p *WorkerPool) Submit(ctx context.Context, fn WorkFunc) *Future {
	fut := newFuture()

	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		fut.resolve(nil, ErrPoolStopped)
		return fut
	}
	p.queue = append(p.queue, &submission{ctx: ctx, fn: fn, fut: fut})
	p.cond.Signal()
	p.mu.Unlock()

	return fut
}

// Stop shuts the pool down. With wait true, workers drain the queue and
// finish in-flight work before Stop returns; otherwise queued
// submissions are discarded (their futures resolve with ErrPoolStopped)
// and Stop returns without waiting for in-flight work.
func (p *WorkerPool) Stop(wait bool) {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return
	}
	p.stopped = true
	if !wait {
		for _, sub := range p.queue {
			sub.fut.resolve(nil, ErrPoolStopped)
		}
		p.queue = nil
	}
	p.cond.Broadcast()
	p.mu.Unlock()

	if wait {
		p.wg.Wait()
	}

	p.logger.Debug("worker pool stopped", "graceful", wait)
}

func (p *WorkerPool) worker(id int) {
	defer p.wg.Done()

	for {
		p.mu.Lock()
		for len(p.queue) == 0 && !p.stopped {
			p.cond.Wait()
		}
		if len(p.queue) == 0 {
			p.mu.Unlock()
			return
		}
		sub := p.queue[0]
		p.queue = p.queue[1:]
		p.mu.Unlock()

		p.run(sub, id)
	}
}

// run executes one submission and resolves its future.
func (p *WorkerPool) run(sub *submission, workerID int) {
	if err := sub.ctx.Err(); err != nil {
		sub.fut.resolve(nil, err)
		return
	}

	result, err := p.invoke(sub.ctx, sub.fn, workerID)

	// A work function may itself return deferred work; it is unwrapped
	// exactly once, on the same worker.
	if err == nil {
		switch nested := result.(type) {
		case WorkFunc:
			result, err = p.invoke(sub.ctx, nested, workerID)
		case func(context.Context) (any, error):
			result, err = p.invoke(sub.ctx, nested, workerID)
		}
	}

	sub.fut.resolve(result, err)
}

// invoke calls fn with panic recovery so a misbehaving work function
// cannot take down a worker.
func (p *WorkerPool) invoke(ctx context.Context, fn WorkFunc, workerID int) (result any, err error) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("work function panicked",
				"worker_id", workerID,
				"panic", r)
			result = nil
			err = fmt.Errorf("work function panicked: %v", r)
		}
	}()
	return fn(ctx)
}
