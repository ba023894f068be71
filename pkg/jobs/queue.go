package jobs

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

// Task represents a queued unit of outbound work.
type Task struct {
	ID       string
	Type     string
	Payload  interface{}
	Enqueued time.Time
}

// Handler processes a task.
type Handler func(context.Context, Task) error

// Config tunes dispatcher behaviour.
type Config struct {
	Workers    int
	BufferSize int
	Logger     *zap.Logger
}

// Dispatcher is a fixed worker pool draining a bounded buffer.
// Delivery is at-most-once: a full buffer drops the task and a failed
// handler is not retried; failures are logged only.
type Dispatcher struct {
	name    string
	handler Handler

	workers    int
	bufferSize int
	logger     *zap.Logger

	tasks   chan Task
	ctx     context.Context
	cancel  context.CancelFunc
	wg      sync.WaitGroup
	mu      sync.Mutex
	started bool
}

// NewDispatcher builds a dispatcher with the provided handler.
func NewDispatcher(name string, handler Handler, cfg Config) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = cfg.Workers * 16
	}
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}

	return &Dispatcher{
		name:       name,
		handler:    handler,
		workers:    cfg.Workers,
		bufferSize: cfg.BufferSize,
		logger:     cfg.Logger,
		tasks:      make(chan Task, cfg.BufferSize),
	}
}

// Start begins worker consumption. Safe to call once.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.started {
		return
	}
	d.ctx, d.cancel = context.WithCancel(ctx)
	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker()
	}
	d.started = true
	d.logger.Sugar().Infow("dispatcher started", "name", d.name, "workers", d.workers)
}

// Stop cancels workers and waits for them to exit.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.started {
		d.mu.Unlock()
		return
	}
	d.cancel()
	d.mu.Unlock()
	d.wg.Wait()
	d.logger.Sugar().Infow("dispatcher stopped", "name", d.name)
}

// Dispatch offers a task to the pool without blocking the caller.
// Returns false when the dispatcher is stopped or the buffer is full.
func (d *Dispatcher) Dispatch(task Task) bool {
	d.mu.Lock()
	started := d.started
	d.mu.Unlock()

	if !started {
		d.logger.Sugar().Warnw("dispatcher not started, dropping task", "name", d.name, "task_id", task.ID)
		return false
	}
	if task.Enqueued.IsZero() {
		task.Enqueued = time.Now().UTC()
	}

	select {
	case d.tasks <- task:
		return true
	default:
		d.logger.Sugar().Warnw("dispatcher buffer full, dropping task", "name", d.name, "task_id", task.ID, "type", task.Type)
		return false
	}
}

func (d *Dispatcher) worker() {
	defer d.wg.Done()
	for {
		select {
		case <-d.ctx.Done():
			return
		case task := <-d.tasks:
			if err := d.handler(d.ctx, task); err != nil {
				d.logger.Sugar().Warnw("task failed", "name", d.name, "task_id", task.ID, "type", task.Type, "error", err)
			}
		}
	}
}
