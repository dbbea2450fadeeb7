package services

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
)

func TestActivityPublisher_RoutesToUserChannel(t *testing.T) {
	b := bus.NewMemoryBus()
	var got []realtime.SSEMessage
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { got = append(got, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	pub := NewActivityPublisher(logger.Nop(), b, nil)
	userID := uuid.New()

	// a canceled request must not drop the event
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	pub.Publish(ctx, userID, realtime.SSEEventActivityRecorded, map[string]any{"ok": true})
	pub.Publish(context.Background(), uuid.Nil, realtime.SSEEventActivityRecorded, nil)

	if len(got) != 1 {
		t.Fatalf("expected one delivered message, got %d", len(got))
	}
	if got[0].Channel != realtime.UserChannel(userID) || got[0].Event != realtime.SSEEventActivityRecorded {
		t.Fatalf("unexpected message: %+v", got[0])
	}
}

func TestActivityPublisher_ClosedBusIsSilent(t *testing.T) {
	b := bus.NewMemoryBus()
	_ = b.Close()
	pub := NewActivityPublisher(logger.Nop(), b, nil)
	pub.Publish(context.Background(), uuid.New(), realtime.SSEEventLessonGenerated, nil)
}
