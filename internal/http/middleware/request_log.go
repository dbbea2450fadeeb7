package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// RequestLogger writes one line per finished request. Health and metrics
// checks are logged at debug.
func RequestLogger(log *logger.Logger) gin.HandlerFunc {
	if log == nil {
		return func(c *gin.Context) { c.Next() }
	}
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = c.Request.URL.Path
		}
		status := c.Writer.Status()
		ctx := c.Request.Context()

		kv := []any{
			"method", c.Request.Method,
			"route", route,
			"status", status,
			"duration_ms", time.Since(start).Milliseconds(),
			"bytes", c.Writer.Size(),
		}
		kv = append(kv, ctxutil.LogFields(ctx)...)
		if id := ctxutil.UserID(ctx); id != uuid.Nil {
			kv = append(kv, "user_id", id.String())
		}
		if len(c.Errors) > 0 {
			kv = append(kv, "errors", c.Errors.String())
		}

		switch {
		case status >= 500:
			log.Error("request failed", kv...)
		case status >= 400:
			log.Warn("request rejected", kv...)
		case route == "/healthcheck" || route == "/metrics":
			log.Debug("health check", kv...)
		default:
			log.Info("request", kv...)
		}
	}
}
