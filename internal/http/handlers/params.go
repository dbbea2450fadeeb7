package handlers

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
)

// page is the limit/skip pair echoed back on list responses.
type page struct {
	Limit int `json:"limit"`
	Skip  int `json:"skip"`
}

// queryPage reads ?limit= and ?skip=. Values outside [1, max] and negative
// skips are rejected rather than clamped.
func queryPage(c *gin.Context, def, max int) (page, error) {
	p := page{Limit: def}
	if raw := strings.TrimSpace(c.Query("limit")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 || n > max {
			return p, apperr.Invalid("limit must be between 1 and %d", max)
		}
		p.Limit = n
	}
	if raw := strings.TrimSpace(c.Query("skip")); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 0 {
			return p, apperr.Invalid("skip must be a non-negative integer")
		}
		p.Skip = n
	}
	return p, nil
}

func queryBool(c *gin.Context, key string) (bool, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return false, nil
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, apperr.Invalid("%s must be a boolean", key)
	}
	return v, nil
}

func pathUUID(c *gin.Context, key string) (uuid.UUID, error) {
	id, err := uuid.Parse(strings.TrimSpace(c.Param(key)))
	if err != nil {
		return uuid.Nil, apperr.Invalid("invalid %s", key)
	}
	return id, nil
}

func queryUUID(c *gin.Context, key string) (*uuid.UUID, error) {
	raw := strings.TrimSpace(c.Query(key))
	if raw == "" {
		return nil, nil
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, apperr.Invalid("invalid %s", key)
	}
	return &id, nil
}

// callerID is the authenticated user. RequireAuth guarantees it is set on
// every protected route.
func callerID(c *gin.Context) (uuid.UUID, error) {
	id := ctxutil.UserID(c.Request.Context())
	if id == uuid.Nil {
		return uuid.Nil, fmt.Errorf("no authenticated user: %w", apperr.ErrUnauthorized)
	}
	return id, nil
}
