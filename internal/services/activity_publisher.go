package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
)

// ActivityPublisher pushes events to the caller's live stream. Publishing is
// best effort: failures are logged and counted, never returned.
type ActivityPublisher interface {
	Publish(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any)
}

type activityPublisher struct {
	bus     bus.Bus
	metrics *observability.Metrics
	log     *logger.Logger
}

func NewActivityPublisher(log *logger.Logger, b bus.Bus, metrics *observability.Metrics) ActivityPublisher {
	if log == nil {
		log = logger.Nop()
	}
	return &activityPublisher{bus: b, metrics: metrics, log: log.With("service", "ActivityPublisher")}
}

func (p *activityPublisher) Publish(ctx context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	if p == nil || p.bus == nil || userID == uuid.Nil {
		return
	}
	msg := realtime.SSEMessage{Channel: realtime.UserChannel(userID), Event: event, Data: data}
	if err := p.bus.Publish(context.WithoutCancel(ctx), msg); err != nil {
		p.metrics.IncBusPublished(p.bus.Name(), "error")
		p.log.Warn("activity publish failed", "event", event, "user_id", userID, "error", err)
		return
	}
	p.metrics.IncBusPublished(p.bus.Name(), "ok")
}

type nopPublisher struct{}

func (nopPublisher) Publish(context.Context, uuid.UUID, realtime.SSEEvent, any) {}

func publisherOrNop(p ActivityPublisher) ActivityPublisher {
	if p == nil {
		return nopPublisher{}
	}
	return p
}
