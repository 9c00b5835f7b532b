package async

import (
	"context"
	"sync"
	"time"

	"go.uber.org/zap"
)

type Task func(ctx context.Context)

type WorkerPool struct {
	tasks       chan Task
	wg          sync.WaitGroup
	ctx         context.Context
	cancel      context.CancelFunc
	taskTimeout time.Duration
	log         *zap.Logger
}

// NewWorkerPool starts size workers fed by a queue holding up to queueSize
// tasks.
func NewWorkerPool(parent context.Context, size, queueSize int, taskTimeout time.Duration, log *zap.Logger) *WorkerPool {
	if size <= 0 {
		size = 1
	}
	if queueSize <= 0 {
		queueSize = 64
	}
	if taskTimeout <= 0 {
		taskTimeout = 2 * time.Second
	}

	ctx, cancel := context.WithCancel(parent)
	p := &WorkerPool{
		tasks:       make(chan Task, queueSize),
		ctx:         ctx,
		cancel:      cancel,
		taskTimeout: taskTimeout,
		log:         log,
	}

	for i := 0; i < size; i++ {
		p.wg.Add(1)
		go p.worker()
	}

	return p
}

func (p *WorkerPool) worker() {
	defer p.wg.Done()

	for {
		select {
		case <-p.ctx.Done():
			return
		case task, ok := <-p.tasks:
			if !ok {
				return
			}

			safeCtx, cancel := context.WithTimeout(p.ctx, p.taskTimeout)
			func() {
				defer func() {
					if r := recover(); r != nil {
						p.log.Error("task panicked", zap.Any("panic", r))
					}
				}()
				task(safeCtx)
			}()
			cancel()
		}
	}
}

// Submit queues task without waiting. It reports false when the task was
// dropped because the queue is full or the pool is shut down.
func (p *WorkerPool) Submit(task Task) bool {
	if p.ctx.Err() != nil {
		return false
	}
	select {
	case p.tasks <- task:
		return true
	default:
		p.log.Warn("worker pool queue full, task dropped", zap.Int("queue_size", cap(p.tasks)))
		return false
	}
}

func (p *WorkerPool) Shutdown() {
	p.cancel()
	p.wg.Wait()
}
