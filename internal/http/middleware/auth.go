package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/http/response"
	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/services"
)

type AuthMiddleware struct {
	log  *logger.Logger
	auth services.AuthService
}

func NewAuthMiddleware(log *logger.Logger, auth services.AuthService) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "auth"), auth: auth}
}

// RequireAuth resolves the bearer token into request data. Every /api route
// sits behind it; handlers read the learner id with ctxutil.UserID.
func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		raw := bearerToken(c)
		if raw == "" {
			response.RespondError(c, http.StatusUnauthorized, response.CodeUnauthorized, errMissingToken)
			return
		}
		ctx, err := am.auth.SetContextFromToken(c.Request.Context(), raw)
		if err != nil {
			am.log.Debug("token rejected", "route", c.FullPath(), "error", err)
			response.RespondServiceError(c, err)
			return
		}
		if ctxutil.UserID(ctx) == uuid.Nil {
			response.RespondError(c, http.StatusForbidden, "forbidden", errForbidden)
			return
		}
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// bearerToken reads the Authorization header, falling back to ?token= for
// EventSource clients that cannot send headers.
func bearerToken(c *gin.Context) string {
	const prefix = "bearer "
	if h := strings.TrimSpace(c.GetHeader("Authorization")); len(h) > len(prefix) && strings.EqualFold(h[:len(prefix)], prefix) {
		return strings.TrimSpace(h[len(prefix):])
	}
	return strings.TrimSpace(c.Query("token"))
}
