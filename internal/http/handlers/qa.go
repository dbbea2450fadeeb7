package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http/response"
	"github.com/yungbote/tutor-backend/internal/services"
)

type QAHandler struct {
	qa services.QAService
}

func NewQAHandler(qa services.QAService) *QAHandler {
	return &QAHandler{qa: qa}
}

// POST /api/qa/ask
// body: { "question", "context", "lesson_id" }
func (h *QAHandler) Ask(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	var req services.AskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	item, err := h.qa.Ask(c.Request.Context(), userID, req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, item)
}

// GET /api/qa/history?lesson_id=&limit=&skip=
func (h *QAHandler) History(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	p, err := queryPage(c, services.DefaultQALimit, services.MaxQALimit)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	lessonID, err := queryUUID(c, "lesson_id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	items, err := h.qa.History(c.Request.Context(), userID, lessonID, p.Limit, p.Skip)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, gin.H{"items": items, "total": len(items), "limit": p.Limit, "skip": p.Skip})
}

// GET /api/qa/:id
func (h *QAHandler) GetItem(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	item, err := h.qa.Get(c.Request.Context(), userID, id)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, item)
}
