package app

import (
	"context"
	"fmt"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/llm"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/platform/workerpool"
	"github.com/yungbote/tutor-backend/internal/realtime/bus"
	"github.com/yungbote/tutor-backend/internal/services"
)

type Services struct {
	Auth           services.AuthService
	User           services.UserService
	Content        services.ContentService
	Lesson         services.LessonService
	Progress       services.ProgressService
	Recommendation services.RecommendationService
	Analytics      services.AnalyticsService
	QA             services.QAService
	Publisher      services.ActivityPublisher
	Pool           *workerpool.Pool
}

func wireBus(log *logger.Logger, cfg Config, clients Clients) (bus.Bus, error) {
	switch cfg.ActivityBus {
	case bus.KindRedis:
		return bus.NewRedisBus(log, clients.Redis, cfg.ActivityChannel)
	case bus.KindRabbitMQ:
		return bus.NewRabbitMQBus(log, clients.AMQP, cfg.ActivityExchange)
	default:
		return bus.NewMemoryBus(), nil
	}
}

func wireServices(ctx context.Context, log *logger.Logger, cfg Config, rs Repos, activity bus.Bus, metrics *observability.Metrics) (Services, error) {
	log.Info("Wiring services...")

	provider, err := llm.NewProvider(ctx, cfg.LLM, metrics, log)
	if err != nil {
		return Services{}, fmt.Errorf("init llm provider: %w", err)
	}

	pool := workerpool.New("store", cfg.WorkerPoolSize, metrics, log)
	publisher := services.NewActivityPublisher(log, activity, metrics)

	progressAgg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{
			Log:    log,
			Runner: rs.Runner,
			Hooks:  aggregates.NewMetricsHooks(metrics),
		},
		Progress:    rs.Set.Progress,
		Activity:    rs.Set.Activity,
		MaxAttempts: cfg.ProgressCASMaxAttempt,
	})

	content := services.NewContentService(log, provider)
	recs := services.NewRecommendationService(log, rs.Set, metrics, nil, cfg.RecommendationScan)

	return Services{
		Auth:           services.NewAuthService(log, rs.Set.Users, cfg.JWTSecretKey, nil),
		User:           services.NewUserService(log, rs.Set.Users),
		Content:        content,
		Lesson:         services.NewLessonService(log, rs.Set, content, metrics, publisher, nil),
		Progress:       services.NewProgressService(log, rs.Set, progressAgg, publisher, nil),
		Recommendation: recs,
		Analytics:      services.NewAnalyticsService(log, rs.Set, recs, pool, metrics, publisher, nil),
		QA:             services.NewQAService(log, rs.Set, content, metrics, publisher, nil),
		Publisher:      publisher,
		Pool:           pool,
	}, nil
}
