package testutil

import (
	"context"
	"sync"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
)

// InjectedTxRunner runs the body without a database and can fail the commit.
// Counters let tests assert how many transactions an aggregate opened.
type InjectedTxRunner struct {
	mu sync.Mutex

	FailCommit error

	BeginCalls    int
	CommitCalls   int
	RollbackCalls int
}

var _ aggregates.TxRunner = (*InjectedTxRunner)(nil)

func (r *InjectedTxRunner) InTx(ctx context.Context, fn func(dbc dbctx.Context) error) error {
	r.mu.Lock()
	r.BeginCalls++
	failCommit := r.FailCommit
	r.mu.Unlock()

	var err error
	if fn != nil {
		err = fn(dbctx.Context{Ctx: ctx})
	}
	if err == nil && failCommit != nil {
		err = failCommit
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	if err != nil {
		r.RollbackCalls++
		return err
	}
	r.CommitCalls++
	return nil
}
