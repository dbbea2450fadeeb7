package bus

import (
	"context"
	"testing"

	"github.com/yungbote/tutor-backend/internal/realtime"
)

func TestParseKind(t *testing.T) {
	cases := map[string]string{"": KindMemory, "Redis": KindRedis, " rabbitmq ": KindRabbitMQ, "memory": KindMemory}
	for in, want := range cases {
		got, err := ParseKind(in)
		if err != nil || got != want {
			t.Fatalf("ParseKind(%q) = %q, %v; want %q", in, got, err, want)
		}
	}
	if _, err := ParseKind("kafka"); err == nil {
		t.Fatalf("expected error for unknown bus")
	}
}

func TestMemoryBusForwardsToAllHandlers(t *testing.T) {
	b := NewMemoryBus()
	var first, second []realtime.SSEMessage
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { first = append(first, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	if err := b.StartForwarder(context.Background(), func(m realtime.SSEMessage) { second = append(second, m) }); err != nil {
		t.Fatalf("StartForwarder: %v", err)
	}
	msg := realtime.SSEMessage{Channel: "u1", Event: realtime.SSEEventActivityRecorded}
	if err := b.Publish(context.Background(), msg); err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if len(first) != 1 || len(second) != 1 || first[0].Channel != "u1" {
		t.Fatalf("unexpected deliveries: %v / %v", first, second)
	}
}

func TestMemoryBusRejectsAfterClose(t *testing.T) {
	b := NewMemoryBus()
	_ = b.Close()
	if err := b.Publish(context.Background(), realtime.SSEMessage{Channel: "u1"}); err == nil {
		t.Fatalf("expected publish on closed bus to fail")
	}
	if err := b.StartForwarder(context.Background(), func(realtime.SSEMessage) {}); err == nil {
		t.Fatalf("expected forwarder on closed bus to fail")
	}
}

func TestMemoryBusHonoursCanceledContext(t *testing.T) {
	b := NewMemoryBus()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := b.Publish(ctx, realtime.SSEMessage{Channel: "u1"}); err == nil {
		t.Fatalf("expected canceled context error")
	}
}

func TestRoutingKey(t *testing.T) {
	if got := RoutingKey(realtime.SSEMessage{Event: realtime.SSEEventActivityRecorded}); got != "activity.activityrecorded" {
		t.Fatalf("RoutingKey = %q", got)
	}
	if got := RoutingKey(realtime.SSEMessage{}); got != "activity.unknown" {
		t.Fatalf("RoutingKey = %q", got)
	}
}
