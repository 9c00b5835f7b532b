package async

import (
	"context"
	"time"

	"go.uber.org/zap"

	"teamaccess/internal/domain"
)

// Sink receives every published event after it has been logged.
type Sink interface {
	Export(ctx context.Context, e domain.Event) error
}

type AsyncEventBus struct {
	pool  *WorkerPool
	sinks []Sink
	log   *zap.Logger
}

func NewAsyncEventBus(ctx context.Context, poolSize, queueSize int, taskTimeout time.Duration, log *zap.Logger, sinks ...Sink) *AsyncEventBus {
	return &AsyncEventBus{
		pool:  NewWorkerPool(ctx, poolSize, queueSize, taskTimeout, log),
		sinks: sinks,
		log:   log,
	}
}

// Publish never blocks. When the queue is full the event is dropped and logged.
func (b *AsyncEventBus) Publish(ctx context.Context, e domain.Event) {
	queued := b.pool.Submit(func(ctx context.Context) {
		b.log.Info("domain_event",
			zap.String("type", e.Type),
			zap.Any("payload", e.Payload),
		)
		for _, s := range b.sinks {
			if err := s.Export(ctx, e); err != nil {
				b.log.Warn("event export failed", zap.String("type", e.Type), zap.Error(err))
			}
		}
	})
	if !queued {
		b.log.Warn("domain_event dropped", zap.String("type", e.Type))
	}
}

func (b *AsyncEventBus) Close() {
	b.pool.Shutdown()
}
