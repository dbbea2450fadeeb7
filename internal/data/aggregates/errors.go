package aggregates

import (
	"context"
	"errors"
	"strings"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

// ErrRetryable marks transient store failures (serialization, deadlock, lock timeout).
var ErrRetryable = errors.New("retryable storage failure")

type retryableError struct{ err error }

func (e *retryableError) Error() string { return e.err.Error() }
func (e *retryableError) Unwrap() error { return e.err }
func (e *retryableError) Is(target error) bool {
	return target == ErrRetryable
}

// MapError maps driver failures into the application error taxonomy.
// Errors that are already typed pass through unchanged.
func MapError(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *apperr.StorageError
	if errors.As(err, &se) {
		return err
	}
	var nf *apperr.NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	switch {
	case errors.Is(err, apperr.ErrInvalidArgument):
		return err
	case errors.Is(err, gorm.ErrRecordNotFound):
		return apperr.NotFound(op, "")
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return apperr.Storage(op, &retryableError{err: err})
	}

	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		switch strings.TrimSpace(pgErr.Code) {
		case "23505":
			return apperr.Conflict(op, err) // unique_violation
		case "40001", "40P01", "55P03":
			return apperr.Storage(op, &retryableError{err: err}) // serialization/deadlock/lock_not_available
		}
	}

	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "duplicate key"), strings.Contains(msg, "unique constraint failed"):
		return apperr.Conflict(op, err)
	case strings.Contains(msg, "deadlock"),
		strings.Contains(msg, "serialization"),
		strings.Contains(msg, "database is locked"):
		return apperr.Storage(op, &retryableError{err: err})
	default:
		return apperr.Storage(op, err)
	}
}

// IsRetryable reports whether err wraps a transient store failure.
func IsRetryable(err error) bool { return errors.Is(err, ErrRetryable) }
