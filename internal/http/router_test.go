package http

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	httpH "github.com/yungbote/tutor-backend/internal/http/handlers"
	"github.com/yungbote/tutor-backend/internal/observability"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

func TestRouterRegistersRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Log:              logger.Nop(),
		LessonHandler:    httpH.NewLessonHandler(nil, nil, nil),
		QAHandler:        httpH.NewQAHandler(nil),
		UserHandler:      httpH.NewUserHandler(nil, nil),
		AnalyticsHandler: httpH.NewAnalyticsHandler(nil),
		RealtimeHandler:  httpH.NewRealtimeHandler(logger.Nop(), realtime.NewSSEHub(nil)),
	})
	have := map[string]bool{}
	for _, ri := range r.Routes() {
		have[ri.Method+" "+ri.Path] = true
	}
	for _, want := range []string{
		"GET /api/lessons",
		"GET /api/lessons/recommended",
		"GET /api/lessons/my-lessons",
		"GET /api/lessons/:id",
		"POST /api/lessons/generate",
		"POST /api/lessons/:id/progress",
		"POST /api/qa/ask",
		"GET /api/qa/history",
		"GET /api/qa/:id",
		"GET /api/users/me",
		"PUT /api/users/me",
		"GET /api/users/me/progress",
		"GET /api/analytics/dashboard",
		"GET /api/analytics/me/completed-lessons",
		"GET /api/analytics/me/completion-stats",
		"GET /api/analytics/me/activity",
		"POST /api/analytics/me/activity",
		"GET /api/activity/stream",
	} {
		if !have[want] {
			t.Fatalf("route %s not registered", want)
		}
	}
}

func TestRouterServesMetricsAndHealth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := NewRouter(RouterConfig{
		Metrics:       observability.New(),
		HealthHandler: httpH.NewHealthHandler(nil),
	})
	for _, path := range []string{"/healthcheck", "/metrics"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Code != http.StatusOK {
			t.Fatalf("%s: got %d", path, rec.Code)
		}
	}
}
