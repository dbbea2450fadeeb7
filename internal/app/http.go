package app

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http"
	httpH "github.com/yungbote/tutor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tutor-backend/internal/http/middleware"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

type Middleware struct {
	Auth *httpMW.AuthMiddleware
}

type Handlers struct {
	Health    *httpH.HealthHandler
	Lesson    *httpH.LessonHandler
	QA        *httpH.QAHandler
	User      *httpH.UserHandler
	Analytics *httpH.AnalyticsHandler
	Realtime  *httpH.RealtimeHandler
}

func healthChecks(clients Clients) map[string]httpH.HealthCheck {
	checks := map[string]httpH.HealthCheck{}
	if clients.DB != nil {
		checks["database"] = func(ctx context.Context) error {
			sqlDB, err := clients.DB.DB().DB()
			if err != nil {
				return err
			}
			return sqlDB.PingContext(ctx)
		}
	}
	if clients.Mongo != nil {
		checks["mongo"] = clients.Mongo.Ping
	}
	if clients.Redis != nil {
		checks["redis"] = func(ctx context.Context) error { return clients.Redis.Ping(ctx).Err() }
	}
	return checks
}

func wireHandlers(log *logger.Logger, services Services, clients Clients, hub *realtime.SSEHub) Handlers {
	log.Info("Wiring handlers...")
	return Handlers{
		Health:    httpH.NewHealthHandler(healthChecks(clients)),
		Lesson:    httpH.NewLessonHandler(services.Lesson, services.Progress, services.Recommendation),
		QA:        httpH.NewQAHandler(services.QA),
		User:      httpH.NewUserHandler(services.User, services.Progress),
		Analytics: httpH.NewAnalyticsHandler(services.Analytics),
		Realtime:  httpH.NewRealtimeHandler(log, hub),
	}
}

func wireMiddleware(log *logger.Logger, services Services) Middleware {
	log.Info("Wiring middleware...")
	return Middleware{
		Auth: httpMW.NewAuthMiddleware(log, services.Auth),
	}
}

func wireRouter(log *logger.Logger, cfg Config, metrics *observability.Metrics, handlers Handlers, middleware Middleware) *gin.Engine {
	return http.NewRouter(http.RouterConfig{
		Log:              log,
		Metrics:          metrics,
		ServiceName:      serviceName,
		CORSOrigins:      cfg.CORSOrigins,
		RequestTimeout:   cfg.RequestTimeout,
		AuthMiddleware:   middleware.Auth,
		HealthHandler:    handlers.Health,
		LessonHandler:    handlers.Lesson,
		QAHandler:        handlers.QA,
		UserHandler:      handlers.User,
		AnalyticsHandler: handlers.Analytics,
		RealtimeHandler:  handlers.Realtime,
	})
}
