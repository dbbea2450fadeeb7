package aggregates

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

const opProgressRecord = "progress.record"

// ProgressStore is the slice of the progress repo the aggregate needs.
type ProgressStore interface {
	GetByUserID(dbc dbctx.Context, userID uuid.UUID) (*types.LearningProgress, error)
	Create(dbc dbctx.Context, row *types.LearningProgress) error
	UpdateIfVersion(dbc dbctx.Context, row *types.LearningProgress, expected int) (bool, error)
}

type ActivityAppender interface {
	Create(dbc dbctx.Context, events ...*types.ActivityEvent) error
}

// ProgressMutation edits st in place and returns the events to append with
// the write. It may run more than once when a concurrent writer wins the race,
// so it must depend only on st and its captured inputs.
type ProgressMutation func(st *types.ProgressState) ([]*types.ActivityEvent, error)

type ProgressAggregate interface {
	Record(ctx context.Context, userID uuid.UUID, mutate ProgressMutation) (*types.ProgressState, []*types.ActivityEvent, error)
}

type ProgressAggregateDeps struct {
	BaseDeps
	Progress    ProgressStore
	Activity    ActivityAppender
	MaxAttempts int
}

type progressAggregate struct {
	deps ProgressAggregateDeps
}

func NewProgressAggregate(deps ProgressAggregateDeps) ProgressAggregate {
	deps.BaseDeps = deps.BaseDeps.withDefaults()
	if deps.MaxAttempts <= 0 {
		deps.MaxAttempts = 3
	}
	deps.Log = deps.Log.With("aggregate", "ProgressAggregate")
	return &progressAggregate{deps: deps}
}

// Record performs read, mutate and a version-guarded write of the user's
// progress document, plus the event append, in one transaction. Lost races are
// retried from a fresh read up to MaxAttempts times.
func (a *progressAggregate) Record(ctx context.Context, userID uuid.UUID, mutate ProgressMutation) (*types.ProgressState, []*types.ActivityEvent, error) {
	if userID == uuid.Nil {
		return nil, nil, apperr.Invalid("user id is required")
	}
	if mutate == nil {
		return nil, nil, apperr.Invalid("mutation is required")
	}
	var lastErr error
	for attempt := 1; attempt <= a.deps.MaxAttempts; attempt++ {
		if attempt > 1 {
			a.deps.Hooks.IncRetry(opProgressRecord)
		}
		var (
			state  *types.ProgressState
			events []*types.ActivityEvent
		)
		err := executeWrite(ctx, a.deps.BaseDeps, opProgressRecord, func(dbc dbctx.Context) error {
			st, evs, err := a.apply(dbc, userID, mutate)
			if err != nil {
				return err
			}
			state, events = st, evs
			return nil
		})
		if err == nil {
			return state, events, nil
		}
		if !apperr.IsConflict(err) {
			return nil, nil, err
		}
		a.deps.Hooks.IncConflict(opProgressRecord)
		a.deps.Log.Debug("progress write lost a race", "user_id", userID, "attempt", attempt)
		lastErr = err
	}
	return nil, nil, apperr.Conflict(opProgressRecord, fmt.Errorf("gave up after %d attempts: %w", a.deps.MaxAttempts, lastErr))
}

func (a *progressAggregate) apply(dbc dbctx.Context, userID uuid.UUID, mutate ProgressMutation) (*types.ProgressState, []*types.ActivityEvent, error) {
	row, err := a.deps.Progress.GetByUserID(dbc, userID)
	isNew := false
	switch {
	case apperr.IsNotFound(err):
		row = &types.LearningProgress{UserID: userID}
		isNew = true
	case err != nil:
		return nil, nil, err
	}
	st, err := row.Decode()
	if err != nil {
		return nil, nil, apperr.Storage("progress.decode", err)
	}
	st.UserID = userID
	events, err := mutate(st)
	if err != nil {
		return nil, nil, err
	}

	expected := row.Version
	row.Encode(st)
	if isNew {
		if err := a.deps.Progress.Create(dbc, row); err != nil {
			return nil, nil, err
		}
	} else {
		ok, err := a.deps.Progress.UpdateIfVersion(dbc, row, expected)
		if err != nil {
			return nil, nil, err
		}
		if err := RequireCASSuccess(ok, opProgressRecord); err != nil {
			return nil, nil, err
		}
	}
	st.Version = row.Version

	if len(events) > 0 && a.deps.Activity != nil {
		if err := a.deps.Activity.Create(dbc, events...); err != nil {
			return nil, nil, err
		}
	}
	return st, events, nil
}
