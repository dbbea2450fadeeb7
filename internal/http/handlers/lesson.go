package handlers

import (
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http/response"
	"github.com/yungbote/tutor-backend/internal/learning/progress"
	"github.com/yungbote/tutor-backend/internal/services"
)

const (
	defaultRecommendLimit = 3
	maxRecommendLimit     = 10
)

type LessonHandler struct {
	lessons         services.LessonService
	progress        services.ProgressService
	recommendations services.RecommendationService
}

func NewLessonHandler(lessons services.LessonService, progress services.ProgressService, recommendations services.RecommendationService) *LessonHandler {
	return &LessonHandler{lessons: lessons, progress: progress, recommendations: recommendations}
}

// GET /api/lessons?subject=&difficulty=&limit=&skip=
func (h *LessonHandler) ListLessons(c *gin.Context) {
	p, err := queryPage(c, services.DefaultLessonLimit, services.MaxLessonLimit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	lessons, err := h.lessons.List(c.Request.Context(), services.LessonListFilter{
		Subject:    strings.TrimSpace(c.Query("subject")),
		Difficulty: strings.TrimSpace(c.Query("difficulty")),
		Limit:      p.Limit,
		Skip:       p.Skip,
	})
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons, "total": len(lessons), "limit": p.Limit, "skip": p.Skip})
}

// GET /api/lessons/recommended?limit=
func (h *LessonHandler) Recommended(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	p, err := queryPage(c, defaultRecommendLimit, maxRecommendLimit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	recs := h.recommendations.Recommend(c.Request.Context(), userID, p.Limit)
	response.RespondOK(c, gin.H{"lessons": recs, "total": len(recs)})
}

// GET /api/lessons/my-lessons?limit=&skip=&include_completed=
func (h *LessonHandler) MyLessons(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	p, err := queryPage(c, services.DefaultLessonLimit, services.MaxLessonLimit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	includeCompleted, err := queryBool(c, "include_completed")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	lessons, err := h.lessons.MyLessons(c.Request.Context(), userID, p.Limit, p.Skip, includeCompleted)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"lessons": lessons, "total": len(lessons), "limit": p.Limit, "skip": p.Skip})
}

// GET /api/lessons/:id
func (h *LessonHandler) GetLesson(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	lesson, err := h.lessons.Get(c.Request.Context(), id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, lesson)
}

// POST /api/lessons/generate
// body: { "subject", "topic", "difficulty", "duration_minutes", "additional_instructions" }
func (h *LessonHandler) GenerateLesson(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req services.LessonRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	lesson, err := h.lessons.Generate(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondCreated(c, lesson)
}

// POST /api/lessons/:id/progress
// body: { "progress", "time_spent", "completed", "score", "last_position", "notes" }
func (h *LessonHandler) TrackProgress(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	lessonID, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var u progress.Update
	if err := c.ShouldBindJSON(&u); err != nil {
		response.BadRequest(c, err)
		return
	}
	view, _, err := h.progress.RecordProgress(c.Request.Context(), userID, lessonID, u)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"message": "Progress updated successfully", "progress": view})
}
