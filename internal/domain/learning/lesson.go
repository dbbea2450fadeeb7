package learning

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
)

// NormalizeDifficulty lowercases d and reports whether it is a known level.
func NormalizeDifficulty(d string) (string, bool) {
	d = strings.ToLower(strings.TrimSpace(d))
	switch d {
	case DifficultyBeginner, DifficultyIntermediate, DifficultyAdvanced:
		return d, true
	default:
		return d, false
	}
}

// LessonSection is one ordered block of lesson content.
type LessonSection struct {
	Title   string `json:"title"`
	Content string `json:"content"`
	Order   int    `json:"order"`
	Type    string `json:"type"`
}

type Lesson struct {
	ID              uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Subject         string         `gorm:"column:subject;not null;index" json:"subject"`
	Topic           string         `gorm:"column:topic;not null" json:"topic"`
	Title           string         `gorm:"column:title;not null" json:"title"`
	Difficulty      string         `gorm:"column:difficulty;not null;index" json:"difficulty"`
	DurationMinutes int            `gorm:"column:duration_minutes;not null;default:0" json:"duration_minutes"`
	Summary         string         `gorm:"column:summary;type:text" json:"summary"`
	Tags            datatypes.JSON `gorm:"column:tags" json:"tags"`
	Content         datatypes.JSON `gorm:"column:content" json:"content"`
	Exercises       datatypes.JSON `gorm:"column:exercises" json:"exercises"`
	Resources       datatypes.JSON `gorm:"column:resources" json:"resources"`
	CreatedBy       *uuid.UUID     `gorm:"type:uuid;column:created_by;index" json:"created_by,omitempty"`
	CreatedAt       time.Time      `gorm:"not null;index" json:"created_at"`
	UpdatedAt       time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt       gorm.DeletedAt `gorm:"index" json:"-"`
}

func (Lesson) TableName() string { return "lesson" }

func (l *Lesson) BeforeCreate(tx *gorm.DB) error {
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	return nil
}

// TagList decodes the tag column. Non-string entries and blanks are dropped.
func (l *Lesson) TagList() []string {
	if l == nil || len(l.Tags) == 0 {
		return nil
	}
	var raw []any
	if err := json.Unmarshal(l.Tags, &raw); err != nil {
		return nil
	}
	out := make([]string, 0, len(raw))
	for _, v := range raw {
		s, ok := v.(string)
		if !ok {
			continue
		}
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func (l *Lesson) SetTags(tags []string) {
	clean := make([]string, 0, len(tags))
	for _, t := range tags {
		if t = strings.TrimSpace(t); t != "" {
			clean = append(clean, t)
		}
	}
	l.Tags = mustJSON(clean)
}

func (l *Lesson) Sections() []LessonSection {
	if l == nil || len(l.Content) == 0 {
		return nil
	}
	var out []LessonSection
	if err := json.Unmarshal(l.Content, &out); err != nil {
		return nil
	}
	return out
}

// NormalizedDifficulty coerces unknown stored values to beginner.
func (l *Lesson) NormalizedDifficulty() string {
	if d, ok := NormalizeDifficulty(l.Difficulty); ok {
		return d
	}
	return DifficultyBeginner
}

func mustJSON(v any) datatypes.JSON {
	b, err := json.Marshal(v)
	if err != nil {
		return datatypes.JSON("null")
	}
	return datatypes.JSON(b)
}

// JSONOrEmpty marshals v, falling back to an empty JSON list.
func JSONOrEmpty(v any) datatypes.JSON {
	if v == nil {
		return datatypes.JSON("[]")
	}
	b, err := json.Marshal(v)
	if err != nil || string(b) == "null" {
		return datatypes.JSON("[]")
	}
	return datatypes.JSON(b)
}
