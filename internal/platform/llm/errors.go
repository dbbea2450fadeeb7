package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

// ErrRateLimit is a 429 from the provider.
type ErrRateLimit struct {
	RetryAfter time.Duration
	Err        error
}

func (e *ErrRateLimit) Error() string {
	return fmt.Sprintf("rate limited (retry after %s): %v", e.RetryAfter, e.Err)
}

func (e *ErrRateLimit) Unwrap() error { return e.Err }

// ErrInvalidResponse is content that is not JSON or does not match the schema.
type ErrInvalidResponse struct {
	Content json.RawMessage
	Err     error
}

func (e *ErrInvalidResponse) Error() string {
	return fmt.Sprintf("invalid LLM response: %v", e.Err)
}

func (e *ErrInvalidResponse) Unwrap() error { return e.Err }

type ErrProviderUnavailable struct {
	Err error
}

func (e *ErrProviderUnavailable) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("LLM provider unavailable: %v", e.Err)
	}
	return "LLM provider unavailable"
}

func (e *ErrProviderUnavailable) Unwrap() error { return e.Err }

// ErrMaxTokensExceeded is a response cut off by the token limit.
type ErrMaxTokensExceeded struct {
	Content json.RawMessage
}

func (e *ErrMaxTokensExceeded) Error() string {
	return "LLM response truncated: max tokens exceeded"
}

// Retryable reports whether err is transient: rate limits, outages and
// deadlines. Malformed or truncated output is not.
func Retryable(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var rl *ErrRateLimit
	if errors.As(err, &rl) {
		return true
	}
	var inv *ErrInvalidResponse
	if errors.As(err, &inv) {
		return false
	}
	var mt *ErrMaxTokensExceeded
	if errors.As(err, &mt) {
		return false
	}
	var un *ErrProviderUnavailable
	return errors.As(err, &un)
}

// AsGenerationError converts a provider failure into the service error type.
func AsGenerationError(op string, err error) error {
	if err == nil {
		return nil
	}
	var ge *apperr.GenerationError
	if errors.As(err, &ge) {
		return err
	}
	return apperr.Generation(op, err, Retryable(err))
}

func statusOf(err error) string {
	if err == nil {
		return "ok"
	}
	var (
		rl  *ErrRateLimit
		inv *ErrInvalidResponse
		mt  *ErrMaxTokensExceeded
	)
	switch {
	case errors.Is(err, context.Canceled):
		return "canceled"
	case errors.Is(err, context.DeadlineExceeded):
		return "timeout"
	case errors.As(err, &rl):
		return "rate_limited"
	case errors.As(err, &inv):
		return "invalid"
	case errors.As(err, &mt):
		return "truncated"
	default:
		return "unavailable"
	}
}
