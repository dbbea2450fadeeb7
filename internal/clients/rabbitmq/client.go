package rabbitmq

import (
	"fmt"
	"net/url"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/yungbote/tutor-backend/internal/platform/envutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

func URLFromEnv() string {
	return envutil.String("RABBITMQ_URL", "")
}

// Dial opens an AMQP connection. Channels are opened by the caller.
func Dial(log *logger.Logger, rawURL string) (*amqp.Connection, error) {
	if rawURL == "" {
		return nil, fmt.Errorf("missing RABBITMQ_URL")
	}
	conn, err := amqp.Dial(rawURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to RabbitMQ: %w", err)
	}
	if log != nil {
		log.Info("rabbitmq connected", "host", redactedHost(rawURL))
	}
	return conn, nil
}

func redactedHost(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return ""
	}
	return u.Host
}
