package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http/response"
	"github.com/yungbote/tutor-backend/internal/services"
)

type UserHandler struct {
	userService     services.UserService
	progressService services.ProgressService
}

func NewUserHandler(userService services.UserService, progressService services.ProgressService) *UserHandler {
	return &UserHandler{userService: userService, progressService: progressService}
}

// GET /api/users/me
func (uh *UserHandler) GetMe(c *gin.Context) {
	me, err := uh.userService.GetMe(c.Request.Context())
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, me)
}

// PUT /api/users/me
// body: { "display_name", "avatar_url", "preferences": { ... } }
func (uh *UserHandler) UpdateMe(c *gin.Context) {
	var req services.UpdateMeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.BadRequest(c, err)
		return
	}
	me, err := uh.userService.UpdateMe(c.Request.Context(), req)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, me)
}

// GET /api/users/me/progress
func (uh *UserHandler) GetProgress(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	view, err := uh.progressService.GetProgress(c.Request.Context(), userID)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	response.RespondOK(c, view)
}
