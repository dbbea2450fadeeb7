package learning

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// CompletedLessonRecord is one finished lesson inside a user's progress document.
type CompletedLessonRecord struct {
	LessonID       uuid.UUID  `json:"lesson_id"`
	Title          string     `json:"title"`
	Completed      bool       `json:"completed"`
	CompletionDate *time.Time `json:"completion_date,omitempty"`
	Score          *float64   `json:"score,omitempty"`
	TimeSpent      int        `json:"time_spent"`
}

// CurrentLessonRecord is the single in-progress lesson of a user.
type CurrentLessonRecord struct {
	LessonID     uuid.UUID `json:"lesson_id"`
	Title        string    `json:"title"`
	Progress     float64   `json:"progress"`
	LastPosition string    `json:"last_position,omitempty"`
	Notes        string    `json:"notes,omitempty"`
	TimeSpent    int       `json:"time_spent"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// LearningProgress is the per-user progress document. Version is bumped on
// every successful write and guards concurrent read-modify-write cycles.
type LearningProgress struct {
	ID               uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID           uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"user_id"`
	CompletedLessons datatypes.JSON `gorm:"column:completed_lessons" json:"completed_lessons"`
	CurrentLesson    datatypes.JSON `gorm:"column:current_lesson" json:"current_lesson"`
	TotalTimeSpent   int            `gorm:"column:total_time_spent;not null;default:0" json:"total_time_spent"`
	LastActive       *time.Time     `gorm:"column:last_active;index" json:"last_active,omitempty"`
	Version          int            `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt        time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt        time.Time      `gorm:"not null" json:"updated_at"`
}

func (LearningProgress) TableName() string { return "learning_progress" }

func (p *LearningProgress) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}

// ProgressState is the decoded, validated form of a LearningProgress document.
type ProgressState struct {
	UserID           uuid.UUID
	CompletedLessons []CompletedLessonRecord
	CurrentLesson    *CurrentLessonRecord
	TotalTimeSpent   int
	LastActive       *time.Time
	Version          int
}

// Decode validates the JSON columns. Malformed records are rejected and
// out-of-range numbers are coerced.
func (p *LearningProgress) Decode() (*ProgressState, error) {
	st := &ProgressState{UserID: p.UserID, TotalTimeSpent: p.TotalTimeSpent, LastActive: p.LastActive, Version: p.Version}
	if len(p.CompletedLessons) > 0 && string(p.CompletedLessons) != "null" {
		if err := json.Unmarshal(p.CompletedLessons, &st.CompletedLessons); err != nil {
			return nil, fmt.Errorf("decode completed_lessons: %w", err)
		}
	}
	if len(p.CurrentLesson) > 0 && string(p.CurrentLesson) != "null" {
		var cur CurrentLessonRecord
		if err := json.Unmarshal(p.CurrentLesson, &cur); err != nil {
			return nil, fmt.Errorf("decode current_lesson: %w", err)
		}
		if cur.LessonID != uuid.Nil {
			st.CurrentLesson = &cur
		}
	}
	kept := st.CompletedLessons[:0]
	for _, rec := range st.CompletedLessons {
		if rec.LessonID == uuid.Nil {
			continue
		}
		if rec.TimeSpent < 0 {
			rec.TimeSpent = 0
		}
		kept = append(kept, rec)
	}
	st.CompletedLessons = kept
	if st.CurrentLesson != nil {
		st.CurrentLesson.Progress = ClampFraction(st.CurrentLesson.Progress)
		if st.CurrentLesson.TimeSpent < 0 {
			st.CurrentLesson.TimeSpent = 0
		}
	}
	if st.TotalTimeSpent < 0 {
		st.TotalTimeSpent = 0
	}
	return st, nil
}

// Encode writes st back into the document columns. Version is left untouched;
// the store owns it.
func (p *LearningProgress) Encode(st *ProgressState) {
	completed := st.CompletedLessons
	if completed == nil {
		completed = []CompletedLessonRecord{}
	}
	p.UserID = st.UserID
	p.CompletedLessons = mustJSON(completed)
	if st.CurrentLesson != nil {
		p.CurrentLesson = mustJSON(st.CurrentLesson)
	} else {
		p.CurrentLesson = datatypes.JSON("null")
	}
	p.TotalTimeSpent = st.TotalTimeSpent
	p.LastActive = st.LastActive
}

// CompletedIDs returns the set of completed lesson ids.
func (st *ProgressState) CompletedIDs() map[uuid.UUID]struct{} {
	out := make(map[uuid.UUID]struct{}, len(st.CompletedLessons))
	for _, rec := range st.CompletedLessons {
		out[rec.LessonID] = struct{}{}
	}
	return out
}

func ClampFraction(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
