package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http/response"
	"github.com/yungbote/tutor-backend/internal/services"
)

type AnalyticsHandler struct {
	analytics services.AnalyticsService
}

func NewAnalyticsHandler(analytics services.AnalyticsService) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GET /api/analytics/dashboard?time_range=day|week|month|year
func (h *AnalyticsHandler) Dashboard(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	dash, err := h.analytics.Dashboard(c.Request.Context(), userID, c.Query("time_range"))
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, dash)
}

// GET /api/analytics/me/completed-lessons?limit=&skip=
func (h *AnalyticsHandler) CompletedLessons(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	p, err := queryPage(c, services.DefaultPageLimit, services.MaxPageLimit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	lessons, err := h.analytics.CompletedLessons(c.Request.Context(), userID, p.Limit, p.Skip)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons, "total": len(lessons), "limit": p.Limit, "skip": p.Skip})
}

// GET /api/analytics/me/completion-stats
func (h *AnalyticsHandler) CompletionStats(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	stats, err := h.analytics.CompletionStats(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, stats)
}

// GET /api/analytics/me/activity?limit=&skip=
func (h *AnalyticsHandler) Activity(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	p, err := queryPage(c, services.DefaultPageLimit, services.MaxPageLimit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	items, err := h.analytics.Activity(c.Request.Context(), userID, p.Limit, p.Skip)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items, "total": len(items), "limit": p.Limit, "skip": p.Skip})
}

// POST /api/analytics/me/activity
// body: { "type", "lesson_id", "time_spent", "score", "details" }
func (h *AnalyticsHandler) LogActivity(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var in services.LogActivityInput
	if err := c.ShouldBindJSON(&in); err != nil {
		response.BadRequest(c, err)
		return
	}
	ev, err := h.analytics.LogActivity(c.Request.Context(), userID, in)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, ev)
}
