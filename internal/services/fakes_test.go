package services

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	"github.com/yungbote/tutor-backend/internal/data/aggregates/testutil"
	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
	"github.com/yungbote/tutor-backend/internal/realtime"
)

var fixedNow = time.Date(2024, time.March, 14, 15, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

type memLessons struct {
	mu       sync.Mutex
	rows     map[uuid.UUID]*types.Lesson
	Err      error
	BatchErr error
	Created  int
}

func newMemLessons(lessons ...*types.Lesson) *memLessons {
	m := &memLessons{rows: map[uuid.UUID]*types.Lesson{}}
	for _, l := range lessons {
		m.rows[l.ID] = l
	}
	return m
}

func (m *memLessons) Create(_ dbctx.Context, lessons []*types.Lesson) ([]*types.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	for _, l := range lessons {
		m.rows[l.ID] = l
		m.Created++
	}
	return lessons, nil
}

func (m *memLessons) Upsert(_ dbctx.Context, l *types.Lesson) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.rows[l.ID] = l
	return nil
}

func (m *memLessons) GetByID(_ dbctx.Context, id uuid.UUID) (*types.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	l, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("lesson", id.String())
	}
	return l, nil
}

func (m *memLessons) GetByIDs(_ dbctx.Context, ids []uuid.UUID) ([]*types.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if m.BatchErr != nil {
		return nil, m.BatchErr
	}
	var out []*types.Lesson
	for _, id := range ids {
		if l, ok := m.rows[id]; ok {
			out = append(out, l)
		}
	}
	return out, nil
}

func (m *memLessons) List(_ dbctx.Context, f repos.LessonFilter) ([]*types.Lesson, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	excluded := map[uuid.UUID]bool{}
	for _, id := range f.ExcludeIDs {
		excluded[id] = true
	}
	var out []*types.Lesson
	for _, l := range m.rows {
		if excluded[l.ID] {
			continue
		}
		if f.Subject != "" && l.Subject != f.Subject {
			continue
		}
		if f.Difficulty != "" && l.Difficulty != f.Difficulty {
			continue
		}
		if f.CreatedBy != nil && (l.CreatedBy == nil || *l.CreatedBy != *f.CreatedBy) {
			continue
		}
		out = append(out, l)
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID.String() < out[j].ID.String()
	})
	out = pageOf(out, f.Limit, f.Skip)
	return out, nil
}

func (m *memLessons) Count(_ dbctx.Context) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	return int64(len(m.rows)), nil
}

func (m *memLessons) CountBySubject(_ dbctx.Context) (map[string]int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	out := map[string]int64{}
	for _, l := range m.rows {
		out[l.Subject]++
	}
	return out, nil
}

type memUsers struct {
	mu   sync.Mutex
	rows map[uuid.UUID]*types.User
	Err  error
}

func newMemUsers(users ...*types.User) *memUsers {
	m := &memUsers{rows: map[uuid.UUID]*types.User{}}
	for _, u := range users {
		m.rows[u.ID] = u
	}
	return m
}

func (m *memUsers) GetByID(_ dbctx.Context, id uuid.UUID) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	u, ok := m.rows[id]
	if !ok {
		return nil, apperr.NotFound("user", id.String())
	}
	cp := *u
	return &cp, nil
}

func (m *memUsers) EnsureUser(_ dbctx.Context, u *types.User) (*types.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	if cur, ok := m.rows[u.ID]; ok {
		cp := *cur
		return &cp, nil
	}
	cp := *u
	m.rows[u.ID] = &cp
	out := cp
	return &out, nil
}

func (m *memUsers) Update(_ dbctx.Context, u *types.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	cp := *u
	m.rows[u.ID] = &cp
	return nil
}

type memAchievements struct {
	mu   sync.Mutex
	rows []*types.Achievement
	Err  error
}

func (m *memAchievements) Create(_ dbctx.Context, rows ...*types.Achievement) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return m.Err
	}
	m.rows = append(m.rows, rows...)
	return nil
}

func (m *memAchievements) ListRecentByUser(_ dbctx.Context, userID uuid.UUID, limit int) ([]*types.Achievement, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return nil, m.Err
	}
	var out []*types.Achievement
	for _, a := range m.rows {
		if a.UserID == userID {
			out = append(out, a)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].EarnedAt.After(out[j].EarnedAt) })
	return pageOf(out, limit, 0), nil
}

func (m *memAchievements) CountByUser(_ dbctx.Context, userID uuid.UUID) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.Err != nil {
		return 0, m.Err
	}
	var n int64
	for _, a := range m.rows {
		if a.UserID == userID {
			n++
		}
	}
	return n, nil
}

type memQA struct {
	mu        sync.Mutex
	rows      map[uuid.UUID]*types.QAItem
	UpdateErr error
}

func newMemQA() *memQA { return &memQA{rows: map[uuid.UUID]*types.QAItem{}} }

func (m *memQA) Create(_ dbctx.Context, item *types.QAItem) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *item
	m.rows[item.ID] = &cp
	return nil
}

func (m *memQA) GetForUser(_ dbctx.Context, userID, id uuid.UUID) (*types.QAItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.rows[id]
	if !ok || it.UserID != userID {
		return nil, apperr.NotFound("qa_item", id.String())
	}
	cp := *it
	return &cp, nil
}

func (m *memQA) ListByUser(_ dbctx.Context, userID uuid.UUID, f repos.QAFilter) ([]*types.QAItem, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*types.QAItem
	for _, it := range m.rows {
		if it.UserID != userID {
			continue
		}
		if f.LessonID != nil && (it.LessonID == nil || *it.LessonID != *f.LessonID) {
			continue
		}
		cp := *it
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return pageOf(out, f.Limit, f.Skip), nil
}

func (m *memQA) UpdateFields(_ dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	it, ok := m.rows[id]
	if !ok {
		return apperr.NotFound("qa_item", id.String())
	}
	for k, v := range updates {
		switch k {
		case "status":
			it.Status = v.(string)
		case "answer":
			it.Answer = v.(string)
		case "refs":
			it.References = v.(datatypes.JSON)
		case "answered_at":
			when := v.(time.Time)
			it.AnsweredAt = &when
		}
	}
	return nil
}

func pageOf[T any](items []T, limit, skip int) []T {
	if skip > 0 {
		if skip >= len(items) {
			return []T{}
		}
		items = items[skip:]
	}
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

type published struct {
	UserID uuid.UUID
	Event  realtime.SSEEvent
	Data   any
}

type recordingPublisher struct {
	mu   sync.Mutex
	msgs []published
}

func (p *recordingPublisher) Publish(_ context.Context, userID uuid.UUID, event realtime.SSEEvent, data any) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.msgs = append(p.msgs, published{UserID: userID, Event: event, Data: data})
}

func (p *recordingPublisher) Events() []realtime.SSEEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]realtime.SSEEvent, 0, len(p.msgs))
	for _, m := range p.msgs {
		out = append(out, m.Event)
	}
	return out
}

// fixture bundles one set of in-memory stores.
type fixture struct {
	lessons      *memLessons
	users        *memUsers
	progress     *testutil.MemoryProgressStore
	activity     *testutil.MemoryActivityLog
	achievements *memAchievements
	qa           *memQA
	pub          *recordingPublisher
}

func newFixture(lessons ...*types.Lesson) *fixture {
	return &fixture{
		lessons:      newMemLessons(lessons...),
		users:        newMemUsers(),
		progress:     testutil.NewMemoryProgressStore(),
		activity:     &testutil.MemoryActivityLog{},
		achievements: &memAchievements{},
		qa:           newMemQA(),
		pub:          &recordingPublisher{},
	}
}

func (f *fixture) set() repos.Set {
	return repos.Set{
		Users:        f.users,
		Lessons:      f.lessons,
		Progress:     f.progress,
		Activity:     f.activity,
		Achievements: f.achievements,
		QA:           f.qa,
	}
}

func (f *fixture) progressService() ProgressService {
	agg := aggregates.NewProgressAggregate(aggregates.ProgressAggregateDeps{
		BaseDeps: aggregates.BaseDeps{Runner: &testutil.InjectedTxRunner{}},
		Progress: f.progress,
		Activity: f.activity,
	})
	return NewProgressService(logger.Nop(), f.set(), agg, f.pub, fixedClock)
}

func lessonFixture(subject, difficulty string, created time.Time, tags ...string) *types.Lesson {
	l := &types.Lesson{
		ID:              uuid.New(),
		Subject:         subject,
		Topic:           subject + " basics",
		Title:           subject + " " + difficulty,
		Difficulty:      difficulty,
		DurationMinutes: 30,
		CreatedAt:       created,
		UpdatedAt:       created,
	}
	l.SetTags(tags)
	return l
}

func dbcFor() dbctx.Context { return dbctx.New(context.Background()) }

type failingActivity struct{}

func (failingActivity) Create(dbctx.Context, ...*types.ActivityEvent) error {
	return apperr.Storage("activity.create", errors.New("unavailable"))
}

func (failingActivity) ListByUserInRange(dbctx.Context, uuid.UUID, time.Time, time.Time) ([]*types.ActivityEvent, error) {
	return nil, apperr.Storage("activity.list", errors.New("unavailable"))
}

func (failingActivity) ListByUser(dbctx.Context, uuid.UUID, int, int) ([]*types.ActivityEvent, error) {
	return nil, apperr.Storage("activity.list", errors.New("unavailable"))
}

func repoSetWithActivity(f *fixture, a repos.ActivityRepo) repos.Set {
	s := f.set()
	s.Activity = a
	return s
}
