// Package bus fans activity events out across API instances so every
// instance's SSE hub sees every user's events.
package bus

import (
	"context"
	"fmt"
	"strings"

	"github.com/yungbote/tutor-backend/internal/realtime"
)

type Bus interface {
	Publish(ctx context.Context, msg realtime.SSEMessage) error
	StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error
	Close() error
	Name() string
}

const (
	KindMemory   = "memory"
	KindRedis    = "redis"
	KindRabbitMQ = "rabbitmq"
)

func ParseKind(s string) (string, error) {
	switch k := strings.ToLower(strings.TrimSpace(s)); k {
	case "", KindMemory:
		return KindMemory, nil
	case KindRedis, KindRabbitMQ:
		return k, nil
	default:
		return "", fmt.Errorf("unknown activity bus %q", s)
	}
}
