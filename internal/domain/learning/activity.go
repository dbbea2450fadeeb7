package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	ActivityLessonCompletion = "lesson_completion"
	ActivityProgressUpdate   = "progress_update"
	ActivityQuestionAsked    = "question_asked"
	ActivityLessonGenerated  = "lesson_generated"
	ActivitySessionStarted   = "session_started"
)

// ActivityEvent is an immutable entry of a user's activity log.
type ActivityEvent struct {
	ID        uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_activity_user_ts,priority:1" json:"user_id"`
	Type      string         `gorm:"column:type;not null;index" json:"type"`
	Timestamp time.Time      `gorm:"column:occurred_at;not null;index:idx_activity_user_ts,priority:2" json:"timestamp"`
	LessonID  *uuid.UUID     `gorm:"type:uuid;column:lesson_id;index" json:"lesson_id,omitempty"`
	TimeSpent *int           `gorm:"column:time_spent" json:"time_spent,omitempty"`
	Score     *float64       `gorm:"column:score" json:"score,omitempty"`
	Details   datatypes.JSON `gorm:"column:details" json:"details,omitempty"`
}

func (ActivityEvent) TableName() string { return "activity_event" }

func (e *ActivityEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == uuid.Nil {
		e.ID = uuid.New()
	}
	return nil
}

// DetailsMap decodes Details, returning an empty map for missing or invalid payloads.
func (e *ActivityEvent) DetailsMap() map[string]any {
	out := map[string]any{}
	if e == nil || len(e.Details) == 0 {
		return out
	}
	_ = json.Unmarshal(e.Details, &out)
	if out == nil {
		out = map[string]any{}
	}
	return out
}

// NewActivityEvent builds an event stamped at ts.
func NewActivityEvent(userID uuid.UUID, typ string, ts time.Time, lessonID *uuid.UUID, timeSpent *int, score *float64, details map[string]any) *ActivityEvent {
	if details == nil {
		details = map[string]any{}
	}
	return &ActivityEvent{
		ID:        uuid.New(),
		UserID:    userID,
		Type:      typ,
		Timestamp: ts,
		LessonID:  lessonID,
		TimeSpent: timeSpent,
		Score:     score,
		Details:   mustJSON(details),
	}
}
