package aggregates_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	"github.com/yungbote/tutor-backend/internal/data/aggregates/testutil"
	types "github.com/yungbote/tutor-backend/internal/domain"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

func addTime(seconds int) aggregates.ProgressMutation {
	return func(st *types.ProgressState) ([]*types.ActivityEvent, error) {
		st.TotalTimeSpent += seconds
		return []*types.ActivityEvent{
			types.NewActivityEvent(st.UserID, types.ActivityProgressUpdate, time.Now(), nil, &seconds, nil, nil),
		}, nil
	}
}

func TestProgressAggregate_CreatesFirstDocument(t *testing.T) {
	store := testutil.NewMemoryProgressStore()
	log := &testutil.MemoryActivityLog{}
	runner := &testutil.InjectedTxRunner{}
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{Runner: runner},
		Progress: store,
		Activity: log,
	})

	userID := uuid.New()
	st, events, err := agg.Record(context.Background(), userID, addTime(30))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if st.TotalTimeSpent != 30 || st.Version != 1 {
		t.Fatalf("unexpected state: %+v", st)
	}
	if len(events) != 1 || len(log.Events()) != 1 {
		t.Fatalf("expected one appended event, got %d/%d", len(events), len(log.Events()))
	}
	if runner.CommitCalls != 1 {
		t.Fatalf("expected one committed tx, got %d", runner.CommitCalls)
	}
}

func TestProgressAggregate_RetriesAfterLostRace(t *testing.T) {
	store := testutil.NewMemoryProgressStore()
	userID := uuid.New()
	seed := types.LearningProgress{UserID: userID, TotalTimeSpent: 100, Version: 4}
	seed.Encode(&types.ProgressState{UserID: userID, TotalTimeSpent: 100})
	store.Put(seed)

	raced := false
	store.BeforeWrite = func(id uuid.UUID) {
		if !raced {
			raced = true
			store.Bump(id)
		}
	}
	hooks := &testutil.HooksRecorder{}
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{Runner: &testutil.InjectedTxRunner{}, Hooks: hooks},
		Progress: store,
		Activity: &testutil.MemoryActivityLog{},
	})

	st, _, err := agg.Record(context.Background(), userID, addTime(20))
	if err != nil {
		t.Fatalf("Record: %v", err)
	}
	if st.TotalTimeSpent != 120 {
		t.Fatalf("expected delta applied once on top of fresh read, got %d", st.TotalTimeSpent)
	}
	if st.Version != 6 {
		t.Fatalf("expected version 6 after one foreign bump and one write, got %d", st.Version)
	}
	if hooks.Conflicts() != 1 || hooks.Retries() != 1 {
		t.Fatalf("expected one conflict and one retry, got %d / %d", hooks.Conflicts(), hooks.Retries())
	}
	statuses := hooks.Statuses()
	if len(statuses) != 2 || statuses[0] != "conflict" || statuses[1] != "success" {
		t.Fatalf("unexpected statuses: %v", statuses)
	}
}

func TestProgressAggregate_GivesUpAfterMaxAttempts(t *testing.T) {
	store := testutil.NewMemoryProgressStore()
	userID := uuid.New()
	seed := types.LearningProgress{UserID: userID, Version: 1}
	seed.Encode(&types.ProgressState{UserID: userID})
	store.Put(seed)
	store.BeforeWrite = store.Bump

	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps:    aggregates.BaseDeps{Runner: &testutil.InjectedTxRunner{}},
		Progress:    store,
		MaxAttempts: 2,
	})
	_, _, err := agg.Record(context.Background(), userID, addTime(5))
	if !apperr.IsConflict(err) {
		t.Fatalf("expected conflict, got %v", err)
	}
	var se *apperr.StorageError
	if !errors.As(err, &se) {
		t.Fatalf("expected StorageError, got %T", err)
	}
	if store.Writes != 0 {
		t.Fatalf("no write should have landed, got %d", store.Writes)
	}
}

func TestProgressAggregate_PropagatesStoreErrors(t *testing.T) {
	store := testutil.NewMemoryProgressStore()
	store.GetErr = apperr.Storage("progress.get", errors.New("connection reset"))
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{Runner: &testutil.InjectedTxRunner{}},
		Progress: store,
	})
	_, _, err := agg.Record(context.Background(), uuid.New(), addTime(1))
	var se *apperr.StorageError
	if !errors.As(err, &se) || apperr.IsConflict(err) {
		t.Fatalf("expected plain StorageError, got %v", err)
	}
}

func TestProgressAggregate_EventAppendFailureRollsBack(t *testing.T) {
	store := testutil.NewMemoryProgressStore()
	runner := &testutil.InjectedTxRunner{}
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{Runner: runner},
		Progress: store,
		Activity: &testutil.MemoryActivityLog{CreateErr: errors.New("disk full")},
	})
	_, _, err := agg.Record(context.Background(), uuid.New(), addTime(1))
	if err == nil {
		t.Fatalf("expected error")
	}
	if runner.RollbackCalls != 1 {
		t.Fatalf("expected rollback, got %d", runner.RollbackCalls)
	}
}
