package app

import (
	"context"
	"fmt"

	amqp "github.com/rabbitmq/amqp091-go"
	goredis "github.com/redis/go-redis/v9"

	"github.com/yungbote/tutor-backend/internal/clients/consul"
	"github.com/yungbote/tutor-backend/internal/clients/mongo"
	"github.com/yungbote/tutor-backend/internal/clients/rabbitmq"
	"github.com/yungbote/tutor-backend/internal/clients/redis"
	"github.com/yungbote/tutor-backend/internal/data/db"
	"github.com/yungbote/tutor-backend/internal/data/repos/mongorepo"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
)

// Clients holds the external connections. Only the ones the config asks for
// are opened.
type Clients struct {
	DB     *db.Service
	Mongo  *mongo.Client
	Redis  *goredis.Client
	AMQP   *amqp.Connection
	Consul *consul.Registry
}

func wireClients(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	log.Info("Wiring clients...")
	c, err := openStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, err
	}

	// Redis backs the redis activity bus and the readiness check.
	if cfg.Redis.Addr != "" {
		rdb, err := redis.New(ctx, log, cfg.Redis)
		if err != nil {
			c.Close(ctx)
			return Clients{}, fmt.Errorf("init redis: %w", err)
		}
		c.Redis = rdb
	}

	if cfg.ActivityBus == bus.KindRabbitMQ {
		conn, err := rabbitmq.Dial(log, cfg.RabbitMQURL)
		if err != nil {
			c.Close(ctx)
			return Clients{}, fmt.Errorf("init rabbitmq: %w", err)
		}
		c.AMQP = conn
	}

	if cfg.Consul.Address != "" {
		reg, err := consul.NewRegistry(log, cfg.Consul.Address)
		if err != nil {
			c.Close(ctx)
			return Clients{}, fmt.Errorf("init consul: %w", err)
		}
		c.Consul = reg
	}
	return c, nil
}

func (c *Clients) Close(ctx context.Context) {
	if c == nil {
		return
	}
	if c.Consul != nil {
		_ = c.Consul.Deregister()
	}
	if c.AMQP != nil {
		_ = c.AMQP.Close()
	}
	if c.Redis != nil {
		_ = c.Redis.Close()
	}
	if c.Mongo != nil {
		_ = c.Mongo.Close(ctx)
	}
	if c.DB != nil {
		_ = c.DB.Close()
	}
}

// openStore connects the configured document store and, when enabled,
// migrates it.
func openStore(ctx context.Context, log *logger.Logger, cfg Config) (Clients, error) {
	var c Clients
	if cfg.StoreBackend == StoreMongo {
		mc, err := mongo.Connect(ctx, cfg.Mongo, log)
		if err != nil {
			return c, fmt.Errorf("init mongo: %w", err)
		}
		c.Mongo = mc
		if cfg.AutoMigrate {
			if err := mongorepo.EnsureIndexes(ctx, mc.Database()); err != nil {
				c.Close(ctx)
				return Clients{}, fmt.Errorf("mongo indexes: %w", err)
			}
		}
		return c, nil
	}

	svc, err := db.Open(cfg.DB, log)
	if err != nil {
		return c, fmt.Errorf("init database: %w", err)
	}
	c.DB = svc
	if cfg.AutoMigrate {
		if err := db.AutoMigrateAll(svc.DB()); err != nil {
			c.Close(ctx)
			return Clients{}, err
		}
		if err := db.EnsureIndexes(svc.DB()); err != nil {
			c.Close(ctx)
			return Clients{}, err
		}
	}
	return c, nil
}

// OpenStore connects only the document store. CLI commands use it to migrate
// and seed without the rest of the service.
func OpenStore(ctx context.Context, log *logger.Logger, cfg Config) (Clients, Repos, error) {
	c, err := openStore(ctx, log, cfg)
	if err != nil {
		return Clients{}, Repos{}, err
	}
	return c, wireRepos(log, c), nil
}
