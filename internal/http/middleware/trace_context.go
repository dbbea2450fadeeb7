package middleware

import (
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
)

const (
	headerTraceID   = "X-Trace-Id"
	headerRequestID = "X-Request-Id"

	// request ids longer than this are replaced rather than echoed
	maxRequestIDLen = 128
)

// AttachTraceContext stores a request id and trace id on the request context
// and echoes both as response headers. An active otel span wins over any
// client supplied trace id.
func AttachTraceContext() gin.HandlerFunc {
	return func(c *gin.Context) {
		td := &ctxutil.TraceData{
			RequestID: requestID(c),
			TraceID:   traceID(c),
		}
		c.Request = c.Request.WithContext(ctxutil.WithTraceData(c.Request.Context(), td))

		h := c.Writer.Header()
		h.Set(headerRequestID, td.RequestID)
		h.Set(headerTraceID, td.TraceID)
		c.Next()
	}
}

func requestID(c *gin.Context) string {
	id := strings.TrimSpace(c.GetHeader(headerRequestID))
	if id == "" || len(id) > maxRequestIDLen {
		return uuid.NewString()
	}
	return id
}

func traceID(c *gin.Context) string {
	if sc := trace.SpanContextFromContext(c.Request.Context()); sc.HasTraceID() {
		return sc.TraceID().String()
	}
	if id := strings.TrimSpace(c.GetHeader(headerTraceID)); id != "" && len(id) <= maxRequestIDLen {
		return id
	}
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}
