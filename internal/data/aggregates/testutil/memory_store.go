package testutil

import (
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

// MemoryProgressStore is an in-memory progress store with the same version
// semantics as the SQL repo. BeforeWrite, when set, runs just before every
// guarded write and can simulate a concurrent writer.
type MemoryProgressStore struct {
	mu   sync.Mutex
	rows map[uuid.UUID]types.LearningProgress

	BeforeWrite func(userID uuid.UUID)
	GetErr      error
	Writes      int
}

func NewMemoryProgressStore() *MemoryProgressStore {
	return &MemoryProgressStore{rows: map[uuid.UUID]types.LearningProgress{}}
}

func (s *MemoryProgressStore) GetByUserID(_ dbctx.Context, userID uuid.UUID) (*types.LearningProgress, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.GetErr != nil {
		return nil, s.GetErr
	}
	row, ok := s.rows[userID]
	if !ok {
		return nil, apperr.NotFound("learning_progress", userID.String())
	}
	cp := row
	return &cp, nil
}

func (s *MemoryProgressStore) Create(_ dbctx.Context, row *types.LearningProgress) error {
	s.hook(row.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, exists := s.rows[row.UserID]; exists {
		return apperr.Conflict("progress.create", errors.New("duplicate user_id"))
	}
	if row.ID == uuid.Nil {
		row.ID = uuid.New()
	}
	row.Version = 1
	s.rows[row.UserID] = *row
	s.Writes++
	return nil
}

func (s *MemoryProgressStore) UpdateIfVersion(_ dbctx.Context, row *types.LearningProgress, expected int) (bool, error) {
	s.hook(row.UserID)
	s.mu.Lock()
	defer s.mu.Unlock()
	cur, ok := s.rows[row.UserID]
	if !ok || cur.Version != expected {
		return false, nil
	}
	row.Version = expected + 1
	row.UpdatedAt = time.Now().UTC()
	s.rows[row.UserID] = *row
	s.Writes++
	return true, nil
}

// Put stores row as-is, bypassing version checks.
func (s *MemoryProgressStore) Put(row types.LearningProgress) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows[row.UserID] = row
}

// Bump increments the stored version, as a concurrent writer would.
func (s *MemoryProgressStore) Bump(userID uuid.UUID) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if row, ok := s.rows[userID]; ok {
		row.Version++
		s.rows[userID] = row
	}
}

func (s *MemoryProgressStore) hook(userID uuid.UUID) {
	s.mu.Lock()
	fn := s.BeforeWrite
	s.mu.Unlock()
	if fn != nil {
		fn(userID)
	}
}

// MemoryActivityLog is an in-memory append-only event log.
type MemoryActivityLog struct {
	mu        sync.Mutex
	events    []*types.ActivityEvent
	CreateErr error
}

func (l *MemoryActivityLog) Create(_ dbctx.Context, events ...*types.ActivityEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.CreateErr != nil {
		return l.CreateErr
	}
	l.events = append(l.events, events...)
	return nil
}

func (l *MemoryActivityLog) ListByUserInRange(_ dbctx.Context, userID uuid.UUID, start, end time.Time) ([]*types.ActivityEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*types.ActivityEvent
	for _, e := range l.events {
		if e.UserID == userID && !e.Timestamp.Before(start) && e.Timestamp.Before(end) {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, nil
}

func (l *MemoryActivityLog) ListByUser(_ dbctx.Context, userID uuid.UUID, limit, skip int) ([]*types.ActivityEvent, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	var out []*types.ActivityEvent
	for _, e := range l.events {
		if e.UserID == userID {
			out = append(out, e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.After(out[j].Timestamp) })
	if skip > 0 {
		if skip >= len(out) {
			return []*types.ActivityEvent{}, nil
		}
		out = out[skip:]
	}
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

// Events returns a snapshot of everything appended so far.
func (l *MemoryActivityLog) Events() []*types.ActivityEvent {
	l.mu.Lock()
	defer l.mu.Unlock()
	return append([]*types.ActivityEvent(nil), l.events...)
}
