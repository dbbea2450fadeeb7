package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/http/response"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

type RealtimeHandler struct {
	log *logger.Logger
	hub *realtime.SSEHub
}

func NewRealtimeHandler(log *logger.Logger, hub *realtime.SSEHub) *RealtimeHandler {
	return &RealtimeHandler{log: log.With("handler", "RealtimeHandler"), hub: hub}
}

// GET /api/activity/stream
// Every connection of a user receives that user's activity events.
func (h *RealtimeHandler) Stream(c *gin.Context) {
	userID, err := callerID(c)
	if err != nil {
		response.RespondServiceError(c, err)
		return
	}
	client := h.hub.NewSSEClient(userID)
	h.hub.AddChannel(client, realtime.UserChannel(userID))
	h.log.Debug("activity stream open", "user_id", userID, "client_id", client.ID)

	h.hub.ServeHTTP(c.Writer, c.Request, client)

	h.hub.CloseClient(client)
	h.log.Debug("activity stream closed", "user_id", userID, "client_id", client.ID)
}
