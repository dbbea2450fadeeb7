// Package progress applies a single lesson interaction to a learner's
// progress document. It never touches storage.
package progress

import (
	"math"
	"strings"
	"time"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

const (
	MaxScore        = 100
	MaxNotesLength  = 5000
	MaxPositionSize = 1000
)

// Update is one lesson interaction. TimeSpent is the learner's total time on
// the lesson so far, in seconds, not an increment.
type Update struct {
	Progress     float64  `json:"progress"`
	TimeSpent    int      `json:"time_spent"`
	Completed    bool     `json:"completed"`
	Score        *float64 `json:"score,omitempty"`
	LastPosition string   `json:"last_position,omitempty"`
	Notes        string   `json:"notes,omitempty"`
}

// Validate rejects values that cannot be stored.
func (u Update) Validate() error {
	if math.IsNaN(u.Progress) || u.Progress < 0 || u.Progress > 1 {
		return apperr.Invalid("progress must be between 0 and 1")
	}
	if u.TimeSpent < 0 {
		return apperr.Invalid("time_spent must not be negative")
	}
	if u.Score != nil && (math.IsNaN(*u.Score) || *u.Score < 0 || *u.Score > MaxScore) {
		return apperr.Invalid("score must be between 0 and %d", MaxScore)
	}
	if len(u.Notes) > MaxNotesLength {
		return apperr.Invalid("notes exceed %d characters", MaxNotesLength)
	}
	if len(u.LastPosition) > MaxPositionSize {
		return apperr.Invalid("last_position exceeds %d characters", MaxPositionSize)
	}
	return nil
}

// Outcome describes what Apply changed.
type Outcome struct {
	EventType         string
	PreviousTimeSpent int
	Delta             int
	NewRecord         bool
}

// Apply folds u into st for lessonID. Completing a lesson keeps one record per
// lesson and clears the in-progress snapshot when it pointed at the same
// lesson. An in-progress update replaces whatever snapshot was there.
// total_time_spent moves by the difference between the new and the
// previously recorded time for the lesson, so replaying an update is a no-op
// for the total.
func Apply(st *types.ProgressState, lessonID uuid.UUID, title string, u Update, now time.Time) Outcome {
	var out Outcome
	cur := st.CurrentLesson
	curIsLesson := cur != nil && cur.LessonID == lessonID

	if u.Completed {
		out.EventType = types.ActivityLessonCompletion
		idx := findCompleted(st.CompletedLessons, lessonID)
		// an open snapshot of this lesson holds the latest time counted in the total
		switch {
		case curIsLesson:
			out.PreviousTimeSpent = cur.TimeSpent
		case idx >= 0:
			out.PreviousTimeSpent = st.CompletedLessons[idx].TimeSpent
		}
		if idx >= 0 {
			rec := &st.CompletedLessons[idx]
			rec.Completed = true
			rec.Score = copyScore(u.Score)
			rec.TimeSpent = u.TimeSpent
			if rec.CompletionDate == nil {
				when := now
				rec.CompletionDate = &when
			}
			if strings.TrimSpace(rec.Title) == "" {
				rec.Title = title
			}
		} else {
			when := now
			st.CompletedLessons = append(st.CompletedLessons, types.CompletedLessonRecord{
				LessonID:       lessonID,
				Title:          title,
				Completed:      true,
				CompletionDate: &when,
				Score:          copyScore(u.Score),
				TimeSpent:      u.TimeSpent,
			})
			out.NewRecord = true
		}
		if curIsLesson {
			st.CurrentLesson = nil
		}
	} else {
		out.EventType = types.ActivityProgressUpdate
		if curIsLesson {
			out.PreviousTimeSpent = cur.TimeSpent
		} else if idx := findCompleted(st.CompletedLessons, lessonID); idx >= 0 {
			// revisiting a finished lesson: its recorded time is already in the total
			out.PreviousTimeSpent = st.CompletedLessons[idx].TimeSpent
		}
		st.CurrentLesson = &types.CurrentLessonRecord{
			LessonID:     lessonID,
			Title:        title,
			Progress:     types.ClampFraction(u.Progress),
			LastPosition: u.LastPosition,
			Notes:        u.Notes,
			TimeSpent:    u.TimeSpent,
			UpdatedAt:    now,
		}
	}

	out.Delta = u.TimeSpent - out.PreviousTimeSpent
	st.TotalTimeSpent += out.Delta
	if st.TotalTimeSpent < 0 {
		st.TotalTimeSpent = 0
	}
	when := now
	st.LastActive = &when
	return out
}

// Event builds the activity entry recorded alongside Apply.
func Event(userID, lessonID uuid.UUID, u Update, out Outcome, now time.Time) *types.ActivityEvent {
	spent := u.TimeSpent
	details := map[string]any{
		"progress":      types.ClampFraction(u.Progress),
		"last_position": u.LastPosition,
		"time_delta":    out.Delta,
	}
	if u.Completed {
		details["progress"] = 1.0
	}
	lid := lessonID
	return types.NewActivityEvent(userID, out.EventType, now, &lid, &spent, copyScore(u.Score), details)
}

// Find returns the completed record for lessonID, if any.
func Find(st *types.ProgressState, lessonID uuid.UUID) (types.CompletedLessonRecord, bool) {
	if st == nil {
		return types.CompletedLessonRecord{}, false
	}
	if i := findCompleted(st.CompletedLessons, lessonID); i >= 0 {
		return st.CompletedLessons[i], true
	}
	return types.CompletedLessonRecord{}, false
}

type Summary struct {
	LessonsCompleted int      `json:"lessons_completed"`
	TotalTimeSpent   int      `json:"total_time_spent"`
	AverageScore     *float64 `json:"average_score"`
}

func Summarize(st *types.ProgressState) Summary {
	if st == nil {
		return Summary{}
	}
	s := Summary{LessonsCompleted: len(st.CompletedLessons), TotalTimeSpent: st.TotalTimeSpent}
	var sum float64
	var n int
	for _, r := range st.CompletedLessons {
		if r.Score != nil {
			sum += *r.Score
			n++
		}
	}
	if n > 0 {
		avg := sum / float64(n)
		s.AverageScore = &avg
	}
	return s
}

func findCompleted(recs []types.CompletedLessonRecord, lessonID uuid.UUID) int {
	for i := range recs {
		if recs[i].LessonID == lessonID {
			return i
		}
	}
	return -1
}

func copyScore(s *float64) *float64 {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
