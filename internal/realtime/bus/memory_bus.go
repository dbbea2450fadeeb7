package bus

import (
	"context"
	"fmt"
	"sync"

	"github.com/yungbote/tutor-backend/internal/realtime"
)

// memoryBus delivers in-process only. Used for single-instance deployments
// and tests.
type memoryBus struct {
	mu       sync.RWMutex
	handlers []func(realtime.SSEMessage)
	closed   bool
}

func NewMemoryBus() Bus {
	return &memoryBus{}
}

func (b *memoryBus) Name() string { return KindMemory }

func (b *memoryBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	if b.closed {
		return fmt.Errorf("memory bus closed")
	}
	for _, h := range b.handlers {
		h(msg)
	}
	return nil
}

func (b *memoryBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return fmt.Errorf("memory bus closed")
	}
	b.handlers = append(b.handlers, onMsg)
	return nil
}

func (b *memoryBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.closed = true
	b.handlers = nil
	return nil
}
