package http

import (
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/yungbote/tutor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/tutor-backend/internal/http/middleware"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

const streamPath = "/api/activity/stream"

type RouterConfig struct {
	Log            *logger.Logger
	Metrics        *observability.Metrics
	ServiceName    string
	CORSOrigins    []string
	RequestTimeout time.Duration

	AuthMiddleware   *httpMW.AuthMiddleware
	HealthHandler    *httpH.HealthHandler
	LessonHandler    *httpH.LessonHandler
	QAHandler        *httpH.QAHandler
	UserHandler      *httpH.UserHandler
	AnalyticsHandler *httpH.AnalyticsHandler
	RealtimeHandler  *httpH.RealtimeHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	log := cfg.Log
	if log == nil {
		log = logger.Nop()
	}
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.ServiceName != "" {
		r.Use(otelgin.Middleware(cfg.ServiceName))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(log))
	r.Use(httpMW.Metrics(cfg.Metrics, streamPath))
	r.Use(httpMW.CORS(cfg.CORSOrigins))
	r.Use(httpMW.AttachRequestContext(cfg.RequestTimeout, streamPath))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	protected := r.Group("/api")
	{
		if cfg.AuthMiddleware != nil {
			protected.Use(cfg.AuthMiddleware.RequireAuth())
		}

		// Lessons
		if cfg.LessonHandler != nil {
			protected.GET("/lessons", cfg.LessonHandler.ListLessons)
			protected.GET("/lessons/recommended", cfg.LessonHandler.Recommended)
			protected.GET("/lessons/my-lessons", cfg.LessonHandler.MyLessons)
			protected.GET("/lessons/:id", cfg.LessonHandler.GetLesson)
			protected.POST("/lessons/generate", cfg.LessonHandler.GenerateLesson)
			protected.POST("/lessons/:id/progress", cfg.LessonHandler.TrackProgress)
		}

		// Q&A
		if cfg.QAHandler != nil {
			protected.POST("/qa/ask", cfg.QAHandler.Ask)
			protected.GET("/qa/history", cfg.QAHandler.History)
			protected.GET("/qa/:id", cfg.QAHandler.GetItem)
		}

		// User (Me)
		if cfg.UserHandler != nil {
			protected.GET("/users/me", cfg.UserHandler.GetMe)
			protected.PUT("/users/me", cfg.UserHandler.UpdateMe)
			protected.GET("/users/me/progress", cfg.UserHandler.GetProgress)
		}

		// Analytics
		if cfg.AnalyticsHandler != nil {
			protected.GET("/analytics/dashboard", cfg.AnalyticsHandler.Dashboard)
			protected.GET("/analytics/me/completed-lessons", cfg.AnalyticsHandler.CompletedLessons)
			protected.GET("/analytics/me/completion-stats", cfg.AnalyticsHandler.CompletionStats)
			protected.GET("/analytics/me/activity", cfg.AnalyticsHandler.Activity)
			protected.POST("/analytics/me/activity", cfg.AnalyticsHandler.LogActivity)
		}

		// Realtime (SSE)
		if cfg.RealtimeHandler != nil {
			protected.GET("/activity/stream", cfg.RealtimeHandler.Stream)
		}
	}

	return r
}
