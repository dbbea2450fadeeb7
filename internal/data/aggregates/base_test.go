package aggregates

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

func TestExecuteWriteObservesStatus(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want string
	}{
		{"success", nil, "success"},
		{"conflict", apperr.Conflict("op", nil), "conflict"},
		{"not_found", apperr.NotFound("lesson", "x"), "not_found"},
		{"invalid", apperr.Invalid("bad"), "invalid"},
		{"failure", errors.New("boom"), "failure"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			hooks := &spyHooks{}
			err := executeWrite(context.Background(), BaseDeps{Runner: spyTxRunner{}, Hooks: hooks}, "aggregate.test", func(_ dbctx.Context) error {
				return tc.err
			})
			if (err == nil) != (tc.err == nil) {
				t.Fatalf("unexpected err: %v", err)
			}
			if len(hooks.Operations) != 1 || hooks.Operations[0].Status != tc.want {
				t.Fatalf("operations: %+v", hooks.Operations)
			}
		})
	}
}

func TestRequireVersionMatch(t *testing.T) {
	if err := RequireVersionMatch("op", 3, 3); err != nil {
		t.Fatalf("unexpected err: %v", err)
	}
	if err := RequireVersionMatch("op", 2, 3); !apperr.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if err := RequireVersionMatch("op", 2, -1); !apperr.IsInvalid(err) {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

type spyTxRunner struct{}

func (spyTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.Context{Ctx: ctx})
}

type spyHooks struct {
	Operations []spyOperation
	Conflicts  []string
	Retries    []string
}

type spyOperation struct {
	Name   string
	Status string
}

func (h *spyHooks) ObserveOperation(name, status string, _ time.Duration) {
	h.Operations = append(h.Operations, spyOperation{Name: name, Status: status})
}

func (h *spyHooks) IncConflict(name string) {
	h.Conflicts = append(h.Conflicts, name)
}

func (h *spyHooks) IncRetry(name string) {
	h.Retries = append(h.Retries, name)
}
