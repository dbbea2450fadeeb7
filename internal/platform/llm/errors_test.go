package llm

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

func TestAsGenerationError(t *testing.T) {
	tests := []struct {
		name      string
		err       error
		retryable bool
	}{
		{"rate limit", &ErrRateLimit{Err: errors.New("429")}, true},
		{"unavailable", &ErrProviderUnavailable{Err: errors.New("503")}, true},
		{"deadline", fmt.Errorf("call: %w", context.DeadlineExceeded), true},
		{"invalid", &ErrInvalidResponse{Err: errors.New("bad json")}, false},
		{"truncated", &ErrMaxTokensExceeded{}, false},
		{"other", errors.New("boom"), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := AsGenerationError("lesson", tt.err)
			var ge *apperr.GenerationError
			if assert.True(t, errors.As(err, &ge)) {
				assert.Equal(t, "lesson", ge.Op)
				assert.Equal(t, tt.retryable, ge.Retryable)
			}
			assert.ErrorIs(t, err, tt.err)
		})
	}
	assert.Nil(t, AsGenerationError("lesson", nil))

	wrapped := apperr.Generation("answer", errors.New("x"), true)
	assert.Same(t, wrapped, AsGenerationError("lesson", wrapped))
}

func TestStatusOf(t *testing.T) {
	assert.Equal(t, "ok", statusOf(nil))
	assert.Equal(t, "rate_limited", statusOf(&ErrRateLimit{}))
	assert.Equal(t, "invalid", statusOf(&ErrInvalidResponse{}))
	assert.Equal(t, "truncated", statusOf(&ErrMaxTokensExceeded{}))
	assert.Equal(t, "timeout", statusOf(context.DeadlineExceeded))
	assert.Equal(t, "canceled", statusOf(context.Canceled))
	assert.Equal(t, "unavailable", statusOf(&ErrProviderUnavailable{}))
}
