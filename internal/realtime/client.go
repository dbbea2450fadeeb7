package realtime

import (
	"sync"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// SSEClient is one open activity stream for a learner. Outbound is buffered;
// the hub drops messages for a client whose buffer is full.
type SSEClient struct {
	ID       uuid.UUID
	UserID   uuid.UUID
	Outbound chan SSEMessage

	channels  map[string]struct{}
	done      chan struct{}
	closeOnce sync.Once
	log       *logger.Logger
}

// subscribed reports whether the client listens on channel. Callers must hold
// the hub lock.
func (c *SSEClient) subscribed(channel string) bool {
	_, ok := c.channels[channel]
	return ok
}

func (c *SSEClient) close() {
	c.closeOnce.Do(func() { close(c.done) })
}
