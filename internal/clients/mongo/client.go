package mongo

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/yungbote/tutor-backend/internal/platform/envutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type Config struct {
	URI             string
	Database        string
	ConnectTimeout  time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
	RetryWrites     bool
	RetryReads      bool
}

func ConfigFromEnv() Config {
	return Config{
		URI:             envutil.String("MONGO_URI", "mongodb://localhost:27017"),
		Database:        envutil.String("MONGO_DATABASE", "tutor"),
		ConnectTimeout:  envutil.Duration("MONGO_CONNECT_TIMEOUT", 10*time.Second),
		MaxPoolSize:     uint64(envutil.Int("MONGO_MAX_POOL_SIZE", 100)),
		MinPoolSize:     uint64(envutil.Int("MONGO_MIN_POOL_SIZE", 0)),
		MaxConnIdleTime: envutil.Duration("MONGO_MAX_CONN_IDLE_TIME", 5*time.Minute),
		RetryWrites:     envutil.Bool("MONGO_RETRY_WRITES", true),
		RetryReads:      envutil.Bool("MONGO_RETRY_READS", true),
	}
}

type Client struct {
	client *mongo.Client
	db     *mongo.Database
	log    *logger.Logger
}

// Connect dials MongoDB and verifies the connection with a ping.
func Connect(ctx context.Context, cfg Config, baseLog *logger.Logger) (*Client, error) {
	log := baseLog.With("client", "MongoClient")
	if strings.TrimSpace(cfg.URI) == "" {
		return nil, fmt.Errorf("missing MONGO_URI")
	}
	opts := options.Client().
		ApplyURI(cfg.URI).
		SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1)).
		SetConnectTimeout(cfg.ConnectTimeout).
		SetMaxPoolSize(cfg.MaxPoolSize).
		SetMinPoolSize(cfg.MinPoolSize).
		SetMaxConnIdleTime(cfg.MaxConnIdleTime).
		SetRetryWrites(cfg.RetryWrites).
		SetRetryReads(cfg.RetryReads)

	client, err := mongo.Connect(opts)
	if err != nil {
		return nil, fmt.Errorf("connect mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, cfg.ConnectTimeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	log.Info("mongo connected", "database", cfg.Database, "max_pool_size", cfg.MaxPoolSize)
	return &Client{client: client, db: client.Database(cfg.Database), log: log}, nil
}

func (c *Client) Database() *mongo.Database { return c.db }

func (c *Client) Ping(ctx context.Context) error { return c.client.Ping(ctx, nil) }

func (c *Client) Close(ctx context.Context) error {
	if c == nil || c.client == nil {
		return nil
	}
	if err := c.client.Disconnect(ctx); err != nil {
		return err
	}
	c.log.Info("mongo disconnected")
	return nil
}
