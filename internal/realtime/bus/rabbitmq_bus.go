package bus

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

const defaultExchange = "tutor.activity"

type rabbitBus struct {
	log      *logger.Logger
	conn     *amqp.Connection
	pubMu    sync.Mutex
	pubCh    *amqp.Channel
	exchange string
}

// NewRabbitMQBus publishes to a topic exchange keyed by event name. Each
// forwarder binds its own exclusive queue, so every instance sees every
// message.
func NewRabbitMQBus(log *logger.Logger, conn *amqp.Connection, exchange string) (Bus, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}
	if conn == nil {
		return nil, fmt.Errorf("amqp connection required")
	}
	if exchange == "" {
		exchange = defaultExchange
	}
	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("failed to declare exchange: %w", err)
	}
	return &rabbitBus{
		log:      log.With("service", "RabbitMQActivityBus"),
		conn:     conn,
		pubCh:    ch,
		exchange: exchange,
	}, nil
}

func (b *rabbitBus) Name() string { return KindRabbitMQ }

// RoutingKey is "activity.<event>", lower-cased.
func RoutingKey(msg realtime.SSEMessage) string {
	ev := strings.ToLower(strings.TrimSpace(string(msg.Event)))
	if ev == "" {
		ev = "unknown"
	}
	return "activity." + ev
}

func (b *rabbitBus) Publish(ctx context.Context, msg realtime.SSEMessage) error {
	body, err := json.Marshal(msg)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	err = b.pubCh.PublishWithContext(ctx, b.exchange, RoutingKey(msg), false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Transient,
		Timestamp:    time.Now().UTC(),
		Body:         body,
		Headers:      amqp.Table{"channel": msg.Channel},
	})
	if err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}
	return nil
}

func (b *rabbitBus) StartForwarder(ctx context.Context, onMsg func(m realtime.SSEMessage)) error {
	if onMsg == nil {
		return fmt.Errorf("onMsg callback required")
	}
	ch, err := b.conn.Channel()
	if err != nil {
		return fmt.Errorf("failed to open a channel: %w", err)
	}
	if err := ch.Qos(64, 0, false); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to set QoS: %w", err)
	}
	q, err := ch.QueueDeclare("", false, true, true, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to declare a queue: %w", err)
	}
	if err := ch.QueueBind(q.Name, "activity.#", b.exchange, false, nil); err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to bind queue: %w", err)
	}
	deliveries, err := ch.Consume(q.Name, "", false, true, false, false, nil)
	if err != nil {
		_ = ch.Close()
		return fmt.Errorf("failed to register a consumer: %w", err)
	}

	go func() {
		defer ch.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case d, ok := <-deliveries:
				if !ok {
					b.log.Warn("rabbitmq delivery channel closed")
					return
				}
				var msg realtime.SSEMessage
				if err := json.Unmarshal(d.Body, &msg); err != nil {
					b.log.Warn("bad rabbitmq activity payload", "error", err, "routing_key", d.RoutingKey)
					_ = d.Nack(false, false)
					continue
				}
				onMsg(msg)
				_ = d.Ack(false)
			}
		}
	}()
	return nil
}

func (b *rabbitBus) Close() error {
	b.pubMu.Lock()
	defer b.pubMu.Unlock()
	if b.pubCh == nil {
		return nil
	}
	err := b.pubCh.Close()
	b.pubCh = nil
	return err
}
