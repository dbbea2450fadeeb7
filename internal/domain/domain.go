package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/yungbote/tutor-backend/internal/domain/learning"
	"github.com/yungbote/tutor-backend/internal/domain/user"
)

const (
	DifficultyBeginner     = learning.DifficultyBeginner
	DifficultyIntermediate = learning.DifficultyIntermediate
	DifficultyAdvanced     = learning.DifficultyAdvanced

	ActivityLessonCompletion = learning.ActivityLessonCompletion
	ActivityProgressUpdate   = learning.ActivityProgressUpdate
	ActivityQuestionAsked    = learning.ActivityQuestionAsked
	ActivityLessonGenerated  = learning.ActivityLessonGenerated
	ActivitySessionStarted   = learning.ActivitySessionStarted

	QAStatusPending  = learning.QAStatusPending
	QAStatusAnswered = learning.QAStatusAnswered
	QAStatusFailed   = learning.QAStatusFailed
)

type User = user.User
type LearningPreferences = user.LearningPreferences

type Lesson = learning.Lesson
type LessonSection = learning.LessonSection
type LearningProgress = learning.LearningProgress
type ProgressState = learning.ProgressState
type CompletedLessonRecord = learning.CompletedLessonRecord
type CurrentLessonRecord = learning.CurrentLessonRecord
type ActivityEvent = learning.ActivityEvent
type Achievement = learning.Achievement
type QAItem = learning.QAItem
type Reference = learning.Reference

// Models lists every persisted type in migration order.
func Models() []any {
	return []any{
		&User{},
		&Lesson{},
		&LearningProgress{},
		&ActivityEvent{},
		&Achievement{},
		&QAItem{},
	}
}

func NormalizeDifficulty(d string) (string, bool) { return learning.NormalizeDifficulty(d) }

func NewActivityEvent(userID uuid.UUID, typ string, ts time.Time, lessonID *uuid.UUID, timeSpent *int, score *float64, details map[string]any) *ActivityEvent {
	return learning.NewActivityEvent(userID, typ, ts, lessonID, timeSpent, score, details)
}

func JSONOrEmpty(v any) datatypes.JSON { return learning.JSONOrEmpty(v) }

func ClampFraction(v float64) float64 { return learning.ClampFraction(v) }
