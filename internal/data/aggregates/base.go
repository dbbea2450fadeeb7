package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		if d.DB != nil {
			d.Runner = NewGormTxRunner(d.DB)
		} else {
			d.Runner = NoopTxRunner{}
		}
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

// executeWrite runs fn inside one transaction and reports the outcome to hooks.
func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(dbc dbctx.Context) error) error {
	start := time.Now()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)
	deps.Hooks.ObserveOperation(op, writeStatus(mapped), time.Since(start))
	return mapped
}

func writeStatus(err error) string {
	switch {
	case err == nil:
		return "success"
	case apperr.IsConflict(err):
		return "conflict"
	case apperr.IsNotFound(err):
		return "not_found"
	case apperr.IsInvalid(err):
		return "invalid"
	case IsRetryable(err):
		return "retryable"
	default:
		return "failure"
	}
}
