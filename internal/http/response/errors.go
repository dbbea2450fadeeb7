package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

const (
	CodeBadRequest   = "bad_request"
	CodeUnauthorized = "unauthorized"
	CodeNotFound     = "not_found"
	CodeConflict     = "conflict"
	CodeGeneration   = "generation_failed"
	CodeUnavailable  = "generation_unavailable"
	CodeInternal     = "internal"
)

// StatusFor maps a service error onto an HTTP status and error code.
func StatusFor(err error) (int, string) {
	var ge *apperr.GenerationError
	switch {
	case err == nil:
		return http.StatusOK, ""
	case errors.Is(err, apperr.ErrUnauthorized):
		return http.StatusUnauthorized, CodeUnauthorized
	case apperr.IsNotFound(err):
		return http.StatusNotFound, CodeNotFound
	case apperr.IsInvalid(err):
		return http.StatusBadRequest, CodeBadRequest
	case apperr.IsConflict(err):
		return http.StatusConflict, CodeConflict
	case errors.As(err, &ge):
		if ge.Retryable {
			return http.StatusServiceUnavailable, CodeUnavailable
		}
		return http.StatusBadGateway, CodeGeneration
	default:
		return http.StatusInternalServerError, CodeInternal
	}
}

// RespondServiceError writes the error envelope for err. Storage and unknown
// failures are reported without their cause.
func RespondServiceError(c *gin.Context, err error) {
	status, code := StatusFor(err)
	switch status {
	case http.StatusInternalServerError:
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("internal server error"))
	case http.StatusBadGateway, http.StatusServiceUnavailable:
		_ = c.Error(err)
		RespondError(c, status, code, errors.New("content generation failed"))
	default:
		RespondError(c, status, code, err)
	}
}
