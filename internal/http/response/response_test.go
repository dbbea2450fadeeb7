package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"

	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

func TestRespondServiceError(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cases := []struct {
		name   string
		err    error
		status int
		code   string
	}{
		{"not found", apperr.NotFound("lesson", "x"), http.StatusNotFound, CodeNotFound},
		{"invalid", apperr.Invalid("bad limit"), http.StatusBadRequest, CodeBadRequest},
		{"unauthorized", apperr.ErrUnauthorized, http.StatusUnauthorized, CodeUnauthorized},
		{"conflict", apperr.Conflict("progress.record", errors.New("lost race")), http.StatusConflict, CodeConflict},
		{"generation", apperr.Generation("generate_lesson", errors.New("bad json"), false), http.StatusBadGateway, CodeGeneration},
		{"retryable generation", apperr.Generation("generate_lesson", errors.New("429"), true), http.StatusServiceUnavailable, CodeUnavailable},
		{"storage", apperr.Storage("lesson.list", errors.New("dial tcp: refused")), http.StatusInternalServerError, CodeInternal},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c, _ := gin.CreateTestContext(rec)
			RespondServiceError(c, tc.err)

			if rec.Code != tc.status {
				t.Fatalf("status: got %d want %d", rec.Code, tc.status)
			}
			var env ErrorEnvelope
			if err := json.Unmarshal(rec.Body.Bytes(), &env); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if env.Error.Code != tc.code || env.Error.Message == "" {
				t.Fatalf("unexpected envelope: %+v", env)
			}
			if tc.status == http.StatusInternalServerError && env.Error.Message != "internal server error" {
				t.Fatalf("storage causes must not leak: %q", env.Error.Message)
			}
		})
	}
}
