package aggregates

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

// TxRunner scopes a progress write and its activity event to one unit of
// work. fn receives the handle repos must use for every statement.
type TxRunner interface {
	InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error
}

type gormTxRunner struct{ db *gorm.DB }

func NewGormTxRunner(db *gorm.DB) TxRunner { return gormTxRunner{db: db} }

func (r gormTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	switch {
	case fn == nil:
		return nil
	case r.db == nil:
		return apperr.Storage("tx.begin", errors.New("no database handle"))
	}
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(dbctx.Context{Ctx: ctx, Tx: tx})
	})
}

// NoopTxRunner calls fn directly. The mongo store uses it: the progress write
// is guarded by its version check, and the activity insert that follows is
// not rolled back if it fails.
type NoopTxRunner struct{}

func (NoopTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	if fn == nil {
		return nil
	}
	return fn(dbctx.New(ctx))
}
