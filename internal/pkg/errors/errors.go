package errors

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrNotFound is a generic sentinel for missing resources.
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized is a generic sentinel for auth failures.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidArgument is a generic sentinel for invalid input.
	ErrInvalidArgument = errors.New("invalid argument")
	// ErrConflict marks a lost compare-and-swap race on a stored document.
	ErrConflict = errors.New("conflict")
)

// StorageError reports a failed document store operation.
type StorageError struct {
	Op       string
	Err      error
	Conflict bool
}

func (e *StorageError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("storage %s failed", e.Op)
	}
	return fmt.Sprintf("storage %s: %v", e.Op, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

func (e *StorageError) Is(target error) bool {
	return e.Conflict && target == ErrConflict
}

// GenerationError reports a failed or malformed content generation call.
type GenerationError struct {
	Op        string
	Err       error
	Retryable bool
}

func (e *GenerationError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if e.Err == nil {
		return fmt.Sprintf("generation %s failed", e.Op)
	}
	return fmt.Sprintf("generation %s: %v", e.Op, e.Err)
}

func (e *GenerationError) Unwrap() error { return e.Err }

// NotFoundError reports a referenced document that does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e == nil {
		return "<nil>"
	}
	if strings.TrimSpace(e.ID) == "" {
		return fmt.Sprintf("%s not found", e.Resource)
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrNotFound }

func Storage(op string, err error) error {
	if err == nil {
		return nil
	}
	var se *StorageError
	if errors.As(err, &se) {
		return err
	}
	var nf *NotFoundError
	if errors.As(err, &nf) {
		return err
	}
	return &StorageError{Op: op, Err: err}
}

func Conflict(op string, err error) error {
	if err == nil {
		err = ErrConflict
	}
	return &StorageError{Op: op, Err: err, Conflict: true}
}

func Generation(op string, err error, retryable bool) error {
	return &GenerationError{Op: op, Err: err, Retryable: retryable}
}

func NotFound(resource, id string) error {
	return &NotFoundError{Resource: resource, ID: id}
}

func Invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidArgument, fmt.Sprintf(format, args...))
}

func IsNotFound(err error) bool { return errors.Is(err, ErrNotFound) }

func IsConflict(err error) bool { return errors.Is(err, ErrConflict) }

func IsInvalid(err error) bool { return errors.Is(err, ErrInvalidArgument) }

// IsRetryable reports whether a generation failure may succeed on retry.
func IsRetryable(err error) bool {
	var ge *GenerationError
	return errors.As(err, &ge) && ge.Retryable
}
