package learning

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	QAStatusPending  = "pending"
	QAStatusAnswered = "answered"
	QAStatusFailed   = "failed"
)

type Reference struct {
	Title  string `json:"title"`
	Source string `json:"source"`
	URL    string `json:"url,omitempty"`
}

type QAItem struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID     uuid.UUID      `gorm:"type:uuid;not null;index:idx_qa_user_created,priority:1" json:"user_id"`
	LessonID   *uuid.UUID     `gorm:"type:uuid;column:lesson_id;index" json:"lesson_id,omitempty"`
	Question   string         `gorm:"column:question;type:text;not null" json:"question"`
	Context    string         `gorm:"column:context;type:text" json:"context,omitempty"`
	Answer     string         `gorm:"column:answer;type:text" json:"answer"`
	References datatypes.JSON `gorm:"column:refs" json:"references"`
	Status     string         `gorm:"column:status;not null;index" json:"status"`
	CreatedAt  time.Time      `gorm:"not null;index:idx_qa_user_created,priority:2" json:"created_at"`
	AnsweredAt *time.Time     `gorm:"column:answered_at" json:"answered_at,omitempty"`
}

func (QAItem) TableName() string { return "qa_item" }

func (q *QAItem) BeforeCreate(tx *gorm.DB) error {
	if q.ID == uuid.Nil {
		q.ID = uuid.New()
	}
	return nil
}

func (q *QAItem) ReferenceList() []Reference {
	if q == nil || len(q.References) == 0 {
		return []Reference{}
	}
	var out []Reference
	if err := json.Unmarshal(q.References, &out); err != nil || out == nil {
		return []Reference{}
	}
	return out
}

func (q *QAItem) SetReferences(refs []Reference) {
	q.References = JSONOrEmpty(refs)
}
