package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestNotFoundMatchesSentinel(t *testing.T) {
	err := fmt.Errorf("load lesson: %w", NotFound("lesson", "l-1"))
	if !IsNotFound(err) {
		t.Fatalf("expected IsNotFound")
	}
	if got := err.Error(); got != "load lesson: lesson l-1 not found" {
		t.Fatalf("message: %q", got)
	}
}

func TestStorageDoesNotRewrapTypedErrors(t *testing.T) {
	nf := NotFound("progress", "")
	if got := Storage("get", nf); got != nf {
		t.Fatalf("not found was rewrapped: %v", got)
	}
	base := errors.New("boom")
	se := Storage("get", base)
	if Storage("again", se) != se {
		t.Fatalf("storage error was rewrapped")
	}
	if !errors.Is(se, base) {
		t.Fatalf("storage error lost its cause")
	}
	if IsConflict(se) {
		t.Fatalf("plain storage error reported as conflict")
	}
	if Storage("noop", nil) != nil {
		t.Fatalf("nil error should stay nil")
	}
}

func TestConflictAndRetryable(t *testing.T) {
	if !IsConflict(Conflict("save progress", nil)) {
		t.Fatalf("expected conflict")
	}
	if !IsRetryable(fmt.Errorf("wrap: %w", Generation("lesson", errors.New("429"), true))) {
		t.Fatalf("expected retryable generation error")
	}
	if IsRetryable(Generation("lesson", errors.New("bad json"), false)) {
		t.Fatalf("malformed output must not be retryable")
	}
	if !IsInvalid(Invalid("limit %d", -1)) {
		t.Fatalf("expected invalid argument")
	}
}
