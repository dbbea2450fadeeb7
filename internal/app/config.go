package app

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/yungbote/tutor-backend/internal/clients/consul"
	"github.com/yungbote/tutor-backend/internal/clients/mongo"
	"github.com/yungbote/tutor-backend/internal/clients/rabbitmq"
	"github.com/yungbote/tutor-backend/internal/clients/redis"
	"github.com/yungbote/tutor-backend/internal/data/db"
	"github.com/yungbote/tutor-backend/internal/platform/envutil"
	"github.com/yungbote/tutor-backend/internal/platform/llm"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
)

const (
	StoreGorm  = "gorm"
	StoreMongo = "mongo"

	serviceName = "tutor-backend"
)

type Config struct {
	Addr            string
	Port            int
	Environment     string
	Version         string
	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	JWTSecretKey string
	TokenTTL     time.Duration

	StoreBackend string
	DB           db.Config
	AutoMigrate  bool
	Mongo        mongo.Config

	ActivityBus      string
	ActivityChannel  string
	ActivityExchange string
	Redis            redis.Config
	RabbitMQURL      string
	Consul           consul.Config

	LLM                   llm.Config
	WorkerPoolSize        int
	RecommendationScan    int
	ProgressCASMaxAttempt int
}

// LoadDotEnv reads .env when present. Real environment variables win.
func LoadDotEnv(log *logger.Logger) {
	if err := godotenv.Load(); err != nil {
		log.Debug("No .env file loaded, using process environment")
	}
}

// LoadEnvFile reads an explicit env file. Unlike LoadDotEnv a missing file is
// an error.
func LoadEnvFile(path string) error {
	if err := godotenv.Load(path); err != nil {
		return fmt.Errorf("load env file %s: %w", path, err)
	}
	return nil
}

func LoadConfig(log *logger.Logger) (Config, error) {
	port := envutil.Int("PORT", 8080)
	cfg := Config{
		Addr:            envutil.String("HTTP_ADDR", fmt.Sprintf(":%d", port)),
		Port:            port,
		Environment:     envutil.String("APP_ENV", "development"),
		Version:         envutil.String("APP_VERSION", "dev"),
		RequestTimeout:  envutil.Duration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout: envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		CORSOrigins:     envutil.List("CORS_ALLOWED_ORIGINS", nil),

		JWTSecretKey: envutil.String("JWT_SECRET_KEY", ""),
		TokenTTL:     envutil.Duration("TOKEN_TTL", time.Hour),

		StoreBackend: strings.ToLower(envutil.String("STORE_BACKEND", StoreGorm)),
		DB:           db.ConfigFromEnv(),
		AutoMigrate:  envutil.Bool("DB_AUTO_MIGRATE", true),
		Mongo:        mongo.ConfigFromEnv(),

		ActivityChannel:  envutil.String("ACTIVITY_CHANNEL", "tutor.activity"),
		ActivityExchange: envutil.String("ACTIVITY_EXCHANGE", "tutor.activity"),
		Redis:            redis.ConfigFromEnv(),
		RabbitMQURL:      rabbitmq.URLFromEnv(),
		Consul:           consul.ConfigFromEnv(serviceName, port),

		LLM:                   llm.ConfigFromEnv(),
		WorkerPoolSize:        envutil.Int("WORKER_POOL_SIZE", 16),
		RecommendationScan:    envutil.Int("RECOMMENDATION_CANDIDATE_LIMIT", 0),
		ProgressCASMaxAttempt: envutil.Int("PROGRESS_CAS_MAX_ATTEMPTS", 3),
	}

	kind, err := bus.ParseKind(envutil.String("ACTIVITY_BUS", bus.KindMemory))
	if err != nil {
		return Config{}, err
	}
	cfg.ActivityBus = kind

	switch cfg.StoreBackend {
	case StoreGorm, StoreMongo:
	default:
		return Config{}, fmt.Errorf("unknown STORE_BACKEND %q", cfg.StoreBackend)
	}
	if cfg.JWTSecretKey == "" {
		if cfg.Environment == "production" {
			return Config{}, fmt.Errorf("JWT_SECRET_KEY is required in production")
		}
		cfg.JWTSecretKey = "dev-secret-change-me"
		log.Warn("JWT_SECRET_KEY not set, using development secret")
	}
	if cfg.ActivityBus == bus.KindRedis && cfg.Redis.Addr == "" {
		return Config{}, fmt.Errorf("ACTIVITY_BUS=redis requires REDIS_ADDR")
	}
	return cfg, nil
}
