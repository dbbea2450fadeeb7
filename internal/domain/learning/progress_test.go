package learning

import (
	"testing"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

func TestDecodeClampsAndDropsInvalidRecords(t *testing.T) {
	lessonID := uuid.New()
	doc := &LearningProgress{
		UserID:           uuid.New(),
		CompletedLessons: datatypes.JSON(`[{"lesson_id":"` + lessonID.String() + `","time_spent":-5},{"lesson_id":"00000000-0000-0000-0000-000000000000"}]`),
		CurrentLesson:    datatypes.JSON(`{"lesson_id":"` + uuid.NewString() + `","progress":1.7,"time_spent":-1}`),
		TotalTimeSpent:   -10,
	}
	st, err := doc.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if len(st.CompletedLessons) != 1 || st.CompletedLessons[0].LessonID != lessonID {
		t.Fatalf("expected only the valid completed record, got %+v", st.CompletedLessons)
	}
	if st.CompletedLessons[0].TimeSpent != 0 {
		t.Fatalf("time_spent not clamped: %d", st.CompletedLessons[0].TimeSpent)
	}
	if st.CurrentLesson == nil || st.CurrentLesson.Progress != 1 || st.CurrentLesson.TimeSpent != 0 {
		t.Fatalf("current lesson not coerced: %+v", st.CurrentLesson)
	}
	if st.TotalTimeSpent != 0 {
		t.Fatalf("total not clamped: %d", st.TotalTimeSpent)
	}
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	doc := &LearningProgress{CompletedLessons: datatypes.JSON(`{"not":"a list"}`)}
	if _, err := doc.Decode(); err == nil {
		t.Fatalf("expected error for malformed completed_lessons")
	}
}

func TestEncodeDecodeKeepsNullCurrentLesson(t *testing.T) {
	var doc LearningProgress
	doc.Encode(&ProgressState{UserID: uuid.New(), TotalTimeSpent: 42})
	if string(doc.CurrentLesson) != "null" || string(doc.CompletedLessons) != "[]" {
		t.Fatalf("unexpected encoding: current=%s completed=%s", doc.CurrentLesson, doc.CompletedLessons)
	}
	st, err := doc.Decode()
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if st.CurrentLesson != nil || st.TotalTimeSpent != 42 {
		t.Fatalf("unexpected state: %+v", st)
	}
}

func TestLessonTagsAndDifficulty(t *testing.T) {
	l := &Lesson{Tags: datatypes.JSON(`["algebra", 3, " ", "equations"]`), Difficulty: "Expert"}
	tags := l.TagList()
	if len(tags) != 2 || tags[0] != "algebra" || tags[1] != "equations" {
		t.Fatalf("unexpected tags: %v", tags)
	}
	if got := l.NormalizedDifficulty(); got != DifficultyBeginner {
		t.Fatalf("expected unknown difficulty to coerce to beginner, got %q", got)
	}
	if d, ok := NormalizeDifficulty(" Advanced "); !ok || d != DifficultyAdvanced {
		t.Fatalf("NormalizeDifficulty: %q %v", d, ok)
	}
}
