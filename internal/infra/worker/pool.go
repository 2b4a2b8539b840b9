// Package worker provides the bounded goroutine pool that runs notice
// deliveries off the caller's goroutine, plus its configuration and metrics.
package worker

import (
	"context"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"golang.org/x/sync/semaphore"
)

// Pool runs submitted tasks on at most MaxConcurrent goroutines at a time.
// Submit never blocks: the wait for a free slot happens on the task's own
// goroutine and is bounded by AcquireTimeout. It is safe for concurrent use.
type Pool struct {
	cfg     PoolConfig
	sem     *semaphore.Weighted
	logger  *slog.Logger
	metrics *PoolMetrics

	mu     sync.RWMutex // guards closed against wg.Add
	closed bool
	wg     sync.WaitGroup

	ctx    context.Context
	cancel context.CancelFunc
}

// Option configures a Pool.
type Option func(*Pool)

// WithMetrics records task results in m.
func WithMetrics(m *PoolMetrics) Option {
	return func(p *Pool) { p.metrics = m }
}

// NewPool creates a pool. Invalid settings are replaced by their defaults.
func NewPool(cfg PoolConfig, logger *slog.Logger, opts ...Option) *Pool {
	if logger == nil {
		logger = slog.Default()
	}
	def := DefaultConfig()
	if validateMaxConcurrent(cfg.MaxConcurrent) != nil {
		cfg.MaxConcurrent = def.MaxConcurrent
	}
	if validateAcquireTimeout(cfg.AcquireTimeout) != nil {
		cfg.AcquireTimeout = def.AcquireTimeout
	}

	ctx, cancel := context.WithCancel(context.Background())
	p := &Pool{
		cfg:    cfg,
		sem:    semaphore.NewWeighted(int64(cfg.MaxConcurrent)),
		logger: logger,
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Submit schedules task. Tasks submitted after Shutdown, or still waiting for
// a slot after AcquireTimeout, are dropped with a warning.
func (p *Pool) Submit(task func()) {
	if task == nil {
		return
	}

	p.mu.RLock()
	if p.closed {
		p.mu.RUnlock()
		p.drop(ErrExecutorShutdown, resultDroppedShutdown)
		return
	}
	p.wg.Add(1)
	p.mu.RUnlock()

	go p.run(task)
}

func (p *Pool) run(task func()) {
	defer p.wg.Done()

	start := time.Now()
	acquireCtx, cancel := context.WithTimeout(p.ctx, p.cfg.AcquireTimeout)
	err := p.sem.Acquire(acquireCtx, 1)
	cancel()
	p.metrics.observeWait(time.Since(start).Seconds())

	if err != nil {
		if p.ctx.Err() != nil {
			p.drop(ErrExecutorShutdown, resultDroppedShutdown)
		} else {
			p.drop(ErrPoolSaturated, resultDroppedSaturated)
		}
		return
	}
	defer p.sem.Release(1)

	p.metrics.taskStarted()
	defer p.metrics.taskFinished()

	if p.execute(task) {
		p.metrics.recordResult(resultCompleted)
	}
}

// execute runs task and reports whether it returned normally.
func (p *Pool) execute(task func()) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			p.logger.Error("Panic in delivery task",
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())))
			p.metrics.recordResult(resultPanicked)
			ok = false
		}
	}()
	task()
	return true
}

func (p *Pool) drop(err error, result string) {
	p.logger.Warn("Delivery task dropped",
		slog.String("reason", result),
		slog.Int("max_concurrent", p.cfg.MaxConcurrent),
		slog.Any("error", err))
	p.metrics.recordResult(result)
}

// Shutdown stops accepting tasks and waits for queued and running tasks.
// If ctx expires first, tasks still waiting for a slot are dropped and
// ctx.Err() is returned; running tasks are not interrupted.
func (p *Pool) Shutdown(ctx context.Context) error {
	p.mu.Lock()
	p.closed = true
	p.mu.Unlock()

	done := make(chan struct{})
	go func() {
		p.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		p.cancel()
		p.logger.Info("Delivery pool shutdown complete")
		return nil
	case <-ctx.Done():
		p.cancel()
		p.logger.Warn("Delivery pool shutdown timeout")
		return ctx.Err()
	}
}

