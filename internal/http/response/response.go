package response

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
)

// APIError is the body of every non-2xx response. RequestID lets a client
// quote the failing call when reporting it.
type APIError struct {
	Code      string `json:"code,omitempty"`
	Message   string `json:"message"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Code: code, Message: http.StatusText(status)}
	if err != nil {
		body.Message = err.Error()
	}
	if c.Request != nil {
		if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
			body.RequestID = td.RequestID
		}
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

// BadRequest reports a binding or query parse failure.
func BadRequest(c *gin.Context, err error) {
	RespondError(c, http.StatusBadRequest, CodeBadRequest, err)
}

func RespondOK(c *gin.Context, payload any)      { c.JSON(http.StatusOK, payload) }
func RespondCreated(c *gin.Context, payload any) { c.JSON(http.StatusCreated, payload) }
