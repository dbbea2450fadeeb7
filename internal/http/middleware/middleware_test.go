package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/services"
)

type stubAuth struct {
	userID uuid.UUID
	err    error
}

func (s stubAuth) SetContextFromToken(ctx context.Context, token string) (context.Context, error) {
	if s.err != nil {
		return ctx, s.err
	}
	return ctxutil.WithRequestData(ctx, &ctxutil.RequestData{UserID: s.userID, TokenString: token}), nil
}

func (s stubAuth) IssueToken(uuid.UUID, string, string, time.Duration) (string, error) {
	return "", nil
}

var _ services.AuthService = stubAuth{}

func authRouter(auth services.AuthService) *gin.Engine {
	r := gin.New()
	r.Use(NewAuthMiddleware(logger.Nop(), auth).RequireAuth())
	r.GET("/api/users/me", func(c *gin.Context) {
		c.String(http.StatusOK, ctxutil.UserID(c.Request.Context()).String())
	})
	return r
}

func TestRequireAuth(t *testing.T) {
	gin.SetMode(gin.TestMode)
	userID := uuid.New()
	r := authRouter(stubAuth{userID: userID})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me", nil))
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("missing token: got %d", rec.Code)
	}

	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK || rec.Body.String() != userID.String() {
		t.Fatalf("bearer token: got %d %q", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/users/me?token=abc", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("query token: got %d", rec.Code)
	}
}

func TestRequireAuthRejectsNilUser(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := authRouter(stubAuth{userID: uuid.Nil})
	req := httptest.NewRequest(http.MethodGet, "/api/users/me", nil)
	req.Header.Set("Authorization", "Bearer abc")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("got %d", rec.Code)
	}
}

func TestAttachRequestContextSkipsStreams(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachRequestContext(time.Minute, "/stream"))
	hasDeadline := func(c *gin.Context) {
		_, ok := c.Request.Context().Deadline()
		if ok {
			c.String(http.StatusOK, "deadline")
			return
		}
		c.String(http.StatusOK, "none")
	}
	r.GET("/stream", hasDeadline)
	r.GET("/lessons", hasDeadline)

	for path, want := range map[string]string{"/stream": "none", "/lessons": "deadline"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		if rec.Body.String() != want {
			t.Fatalf("%s: got %q want %q", path, rec.Body.String(), want)
		}
	}
}

func TestAttachTraceContextEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(AttachTraceContext())
	r.GET("/x", func(c *gin.Context) {
		td := ctxutil.GetTraceData(c.Request.Context())
		c.String(http.StatusOK, td.RequestID)
	})
	req := httptest.NewRequest(http.MethodGet, "/x", nil)
	req.Header.Set("X-Request-Id", "req-1")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	if rec.Body.String() != "req-1" || rec.Header().Get("X-Request-Id") != "req-1" || rec.Header().Get("X-Trace-Id") == "" {
		t.Fatalf("unexpected response: %q %v", rec.Body.String(), rec.Header())
	}
}
