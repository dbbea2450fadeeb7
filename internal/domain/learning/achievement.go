package learning

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Achievement struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID `gorm:"type:uuid;not null;index:idx_achievement_user_earned,priority:1" json:"user_id"`
	Name        string    `gorm:"column:name;not null" json:"name"`
	Description string    `gorm:"column:description;type:text" json:"description"`
	Type        string    `gorm:"column:type;index" json:"type"`
	EarnedAt    time.Time `gorm:"column:earned_at;not null;index:idx_achievement_user_earned,priority:2" json:"earned_at"`
}

func (Achievement) TableName() string { return "achievement" }

func (a *Achievement) BeforeCreate(tx *gorm.DB) error {
	if a.ID == uuid.Nil {
		a.ID = uuid.New()
	}
	return nil
}
