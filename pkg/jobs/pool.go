package jobs

import (
	"context"
	"fmt"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task is one unit of fire-and-forget background work.
type Task struct {
	Kind     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a task. A returned error is logged and the task is
// dropped; callers that need delivery guarantees should not use this pool.
type Handler func(context.Context, Task) error

// Pool is a bounded in-process worker pool. Enqueue never blocks the caller:
// when the buffer is full the task is rejected instead, so request handlers
// stay off the slow path.
type Pool struct {
	name    string
	handler Handler
	workers int
	logger  *zap.Logger

	tasks chan Task

	mu      sync.Mutex
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	started bool
}

// NewPool builds a pool; Start must be called before Enqueue.
func NewPool(name string, workers, buffer int, handler Handler, logger *zap.Logger) *Pool {
	if workers <= 0 {
		workers = 1
	}
	if buffer <= 0 {
		buffer = workers * 16
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Pool{
		name:    name,
		handler: handler,
		workers: workers,
		logger:  logger,
		tasks:   make(chan Task, buffer),
	}
}

// Start launches the workers. Safe to call once.
func (p *Pool) Start(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.started {
		return
	}
	p.ctx, p.cancel = context.WithCancel(ctx)
	for i := 0; i < p.workers; i++ {
		p.wg.Add(1)
		go p.worker()
	}
	p.started = true
	p.logger.Info("worker pool started", zap.String("pool", p.name), zap.Int("workers", p.workers))
}

// Stop cancels the workers and waits for them to exit. Buffered tasks that
// were not picked up yet are discarded.
func (p *Pool) Stop() {
	p.mu.Lock()
	if !p.started {
		p.mu.Unlock()
		return
	}
	p.cancel()
	p.mu.Unlock()
	p.wg.Wait()
	p.logger.Info("worker pool stopped", zap.String("pool", p.name))
}

// Enqueue hands a task to the pool. It fails on a stopped pool or a full
// buffer so the caller can decide whether to run the task inline instead.
func (p *Pool) Enqueue(task Task) error {
	p.mu.Lock()
	started := p.started
	ctx := p.ctx
	p.mu.Unlock()

	if !started {
		return fmt.Errorf("pool %s not started", p.name)
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case <-ctx.Done():
		return fmt.Errorf("pool %s stopped", p.name)
	case p.tasks <- task:
		return nil
	default:
		return fmt.Errorf("pool %s buffer full", p.name)
	}
}

func (p *Pool) worker() {
	defer p.wg.Done()
	for {
		select {
		case <-p.ctx.Done():
			return
		case task := <-p.tasks:
			if err := p.handler(p.ctx, task); err != nil {
				p.logger.Warn("background task failed",
					zap.String("pool", p.name),
					zap.String("kind", task.Kind),
					zap.Error(err))
			}
		}
	}
}
