package events

import (
	"context"
	"sync"

	"soukly-be/internal/logger"

	"go.uber.org/zap"
)

type Publisher interface {
	Publish(ctx context.Context, e Event)
}

type Handler func(ctx context.Context, e Event)

// Bus is a synchronous in-process dispatcher. Publish invokes every
// handler registered for the event name before returning; a panicking
// handler must not take the webhook request down with it.
type Bus struct {
	mu       sync.RWMutex
	handlers map[string][]Handler
}

func NewBus() *Bus {
	return &Bus{
		handlers: make(map[string][]Handler),
	}
}

func (b *Bus) Subscribe(name string, h Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.handlers[name] = append(b.handlers[name], h)
}

func (b *Bus) Publish(ctx context.Context, e Event) {
	b.mu.RLock()
	handlers := b.handlers[e.Name()]
	b.mu.RUnlock()

	for _, h := range handlers {
		b.dispatch(ctx, e, h)
	}
}

func (b *Bus) dispatch(ctx context.Context, e Event, h Handler) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromCtx(ctx).Error("event handler panicked",
				zap.String("event", e.Name()),
				zap.Any("panic", r),
			)
		}
	}()
	h(ctx, e)
}
