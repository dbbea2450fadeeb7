package progress

import (
	"testing"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

var t0 = time.Date(2024, 4, 2, 9, 30, 0, 0, time.UTC)

func score(v float64) *float64 { return &v }

func TestCompletionIsIdempotent(t *testing.T) {
	st := &types.ProgressState{UserID: uuid.New()}
	lesson := uuid.New()
	u := Update{Progress: 1, TimeSpent: 300, Completed: true, Score: score(92)}

	first := Apply(st, lesson, "Loops", u, t0)
	total := st.TotalTimeSpent
	second := Apply(st, lesson, "Loops", u, t0.Add(time.Hour))

	if total != 300 || st.TotalTimeSpent != 300 {
		t.Fatalf("expected 300 after both calls, got %d then %d", total, st.TotalTimeSpent)
	}
	if !first.NewRecord || second.NewRecord || second.Delta != 0 {
		t.Fatalf("unexpected outcomes: %+v %+v", first, second)
	}
	if len(st.CompletedLessons) != 1 {
		t.Fatalf("expected one record, got %d", len(st.CompletedLessons))
	}
	if !st.CompletedLessons[0].CompletionDate.Equal(t0) {
		t.Fatalf("completion date must not move, got %v", st.CompletedLessons[0].CompletionDate)
	}
	if !st.LastActive.Equal(t0.Add(time.Hour)) {
		t.Fatalf("last active not refreshed")
	}
}

func TestRepeatCompletionOverwritesScoreAndTime(t *testing.T) {
	st := &types.ProgressState{}
	lesson := uuid.New()
	Apply(st, lesson, "Loops", Update{Completed: true, TimeSpent: 100, Score: score(50)}, t0)
	out := Apply(st, lesson, "Loops", Update{Completed: true, TimeSpent: 160, Score: score(75)}, t0.Add(time.Hour))

	rec, ok := Find(st, lesson)
	if !ok || *rec.Score != 75 || rec.TimeSpent != 160 || !rec.Completed {
		t.Fatalf("record: %+v", rec)
	}
	if out.PreviousTimeSpent != 100 || out.Delta != 60 || st.TotalTimeSpent != 160 {
		t.Fatalf("outcome %+v total %d", out, st.TotalTimeSpent)
	}
}

func TestInProgressThenCompletionCountsOnce(t *testing.T) {
	st := &types.ProgressState{}
	lesson := uuid.New()
	Apply(st, lesson, "Loops", Update{Progress: 0.3, TimeSpent: 60, LastPosition: "s2"}, t0)
	Apply(st, lesson, "Loops", Update{Progress: 0.6, TimeSpent: 120, LastPosition: "s3"}, t0.Add(time.Minute))
	if st.TotalTimeSpent != 120 || st.CurrentLesson == nil || st.CurrentLesson.LastPosition != "s3" {
		t.Fatalf("in progress: %+v", st)
	}
	out := Apply(st, lesson, "Loops", Update{Progress: 1, TimeSpent: 200, Completed: true}, t0.Add(2*time.Minute))
	if out.PreviousTimeSpent != 120 || st.TotalTimeSpent != 200 {
		t.Fatalf("completion: %+v total %d", out, st.TotalTimeSpent)
	}
	if st.CurrentLesson != nil {
		t.Fatalf("current lesson should be cleared")
	}
}

func TestRevisitingCompletedLessonCountsOnce(t *testing.T) {
	st := &types.ProgressState{}
	lesson := uuid.New()
	Apply(st, lesson, "Loops", Update{Progress: 1, TimeSpent: 600, Completed: true}, t0)

	out := Apply(st, lesson, "Loops", Update{Progress: 0.5, TimeSpent: 600}, t0.Add(time.Hour))
	if out.PreviousTimeSpent != 600 || out.Delta != 0 || st.TotalTimeSpent != 600 {
		t.Fatalf("revisit: %+v total %d", out, st.TotalTimeSpent)
	}
	Apply(st, lesson, "Loops", Update{Progress: 1, TimeSpent: 600, Completed: true}, t0.Add(2*time.Hour))
	if st.TotalTimeSpent != 600 {
		t.Fatalf("re-completion should not add time, total %d", st.TotalTimeSpent)
	}

	// more time on the revisit is counted once
	Apply(st, lesson, "Loops", Update{Progress: 0.5, TimeSpent: 700}, t0.Add(3*time.Hour))
	Apply(st, lesson, "Loops", Update{Progress: 1, TimeSpent: 700, Completed: true}, t0.Add(4*time.Hour))
	if st.TotalTimeSpent != 700 || len(st.CompletedLessons) != 1 || st.CompletedLessons[0].TimeSpent != 700 {
		t.Fatalf("unexpected state after second revisit: total %d records %+v", st.TotalTimeSpent, st.CompletedLessons)
	}
}

func TestInProgressReplacesOtherLesson(t *testing.T) {
	st := &types.ProgressState{}
	a, b := uuid.New(), uuid.New()
	Apply(st, a, "A", Update{Progress: 0.5, TimeSpent: 40}, t0)
	out := Apply(st, b, "B", Update{Progress: 0.2, TimeSpent: 10}, t0)
	if st.CurrentLesson.LessonID != b || out.PreviousTimeSpent != 0 || st.TotalTimeSpent != 50 {
		t.Fatalf("state %+v outcome %+v", st, out)
	}
	Apply(st, a, "A", Update{Completed: true, TimeSpent: 45}, t0)
	if st.CurrentLesson == nil || st.CurrentLesson.LessonID != b {
		t.Fatalf("completing another lesson must not clear the snapshot")
	}
}

func TestTotalNeverNegative(t *testing.T) {
	st := &types.ProgressState{TotalTimeSpent: 10}
	lesson := uuid.New()
	st.CompletedLessons = []types.CompletedLessonRecord{{LessonID: lesson, Completed: true, TimeSpent: 500}}
	Apply(st, lesson, "", Update{Completed: true, TimeSpent: 0}, t0)
	if st.TotalTimeSpent != 0 {
		t.Fatalf("got %d", st.TotalTimeSpent)
	}
}

func TestCompletedRecordRoundTrip(t *testing.T) {
	st := &types.ProgressState{UserID: uuid.New()}
	lesson := uuid.New()
	Apply(st, lesson, "Loops", Update{Completed: true, TimeSpent: 90, Score: score(88.5)}, t0)

	var row types.LearningProgress
	row.Encode(st)
	back, err := row.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	got, ok := Find(back, lesson)
	if !ok || *got.Score != 88.5 || got.TimeSpent != 90 || !got.CompletionDate.Equal(t0) {
		t.Fatalf("round trip: %+v", got)
	}
}

func TestEventTypes(t *testing.T) {
	user, lesson := uuid.New(), uuid.New()
	st := &types.ProgressState{UserID: user}
	u := Update{Progress: 0.4, TimeSpent: 30, LastPosition: "p"}
	e := Event(user, lesson, u, Apply(st, lesson, "", u, t0), t0)
	if e.Type != types.ActivityProgressUpdate || *e.LessonID != lesson || *e.TimeSpent != 30 {
		t.Fatalf("event: %+v", e)
	}
	if d := e.DetailsMap(); d["progress"] != 0.4 || d["last_position"] != "p" {
		t.Fatalf("details: %v", d)
	}
	done := Update{Completed: true, TimeSpent: 50, Score: score(70)}
	e = Event(user, lesson, done, Apply(st, lesson, "", done, t0), t0)
	if e.Type != types.ActivityLessonCompletion || *e.Score != 70 {
		t.Fatalf("event: %+v", e)
	}
}

func TestValidate(t *testing.T) {
	bad := []Update{
		{Progress: -0.1},
		{Progress: 1.5},
		{TimeSpent: -1},
		{Score: score(101)},
		{Score: score(-1)},
	}
	for _, u := range bad {
		if err := u.Validate(); !apperr.IsInvalid(err) {
			t.Fatalf("expected invalid for %+v, got %v", u, err)
		}
	}
	if err := (Update{Progress: 1, TimeSpent: 10, Score: score(100)}).Validate(); err != nil {
		t.Fatalf("valid update rejected: %v", err)
	}
}

func TestSummarize(t *testing.T) {
	st := &types.ProgressState{TotalTimeSpent: 70, CompletedLessons: []types.CompletedLessonRecord{
		{Score: score(60)}, {Score: score(80)}, {},
	}}
	s := Summarize(st)
	if s.LessonsCompleted != 3 || s.TotalTimeSpent != 70 || *s.AverageScore != 70 {
		t.Fatalf("summary: %+v", s)
	}
	if Summarize(&types.ProgressState{}).AverageScore != nil {
		t.Fatalf("expected nil average")
	}
}
