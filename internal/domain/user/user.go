package user

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// User is the profile document keyed by the identity provider's uid.
type User struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	Email       string         `gorm:"column:email;index" json:"email"`
	DisplayName string         `gorm:"column:display_name" json:"display_name"`
	AvatarURL   string         `gorm:"column:avatar_url" json:"avatar_url,omitempty"`
	Preferences datatypes.JSON `gorm:"column:preferences" json:"preferences"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt   gorm.DeletedAt `gorm:"index" json:"-"`
}

func (User) TableName() string { return "user" }

// LearningPreferences is the typed view of preferences.learning_preferences.
type LearningPreferences struct {
	PreferredSubjects    []string `json:"preferred_subjects"`
	DifficultyPreference string   `json:"difficulty_preference"`
	LearningStyle        string   `json:"learning_style,omitempty"`
	DailyGoalMinutes     int      `json:"daily_goal_minutes,omitempty"`
}

// LearningPreferences decodes the nested preferences object. A missing or
// malformed document yields zero preferences.
func (u *User) LearningPreferences() LearningPreferences {
	var out LearningPreferences
	if u == nil || len(u.Preferences) == 0 {
		return out
	}
	var doc struct {
		Learning *LearningPreferences `json:"learning_preferences"`
	}
	if err := json.Unmarshal(u.Preferences, &doc); err != nil || doc.Learning == nil {
		return out
	}
	out = *doc.Learning
	subjects := make([]string, 0, len(out.PreferredSubjects))
	for _, s := range out.PreferredSubjects {
		if s = strings.TrimSpace(s); s != "" {
			subjects = append(subjects, s)
		}
	}
	out.PreferredSubjects = subjects
	out.DifficultyPreference = strings.ToLower(strings.TrimSpace(out.DifficultyPreference))
	return out
}

// PreferencesMap returns the raw preferences object.
func (u *User) PreferencesMap() map[string]any {
	out := map[string]any{}
	if u == nil || len(u.Preferences) == 0 {
		return out
	}
	if err := json.Unmarshal(u.Preferences, &out); err != nil || out == nil {
		return map[string]any{}
	}
	return out
}

// MergePreferences shallow-merges patch into the stored preferences.
func (u *User) MergePreferences(patch map[string]any) error {
	cur := u.PreferencesMap()
	for k, v := range patch {
		cur[k] = v
	}
	b, err := json.Marshal(cur)
	if err != nil {
		return err
	}
	u.Preferences = datatypes.JSON(b)
	return nil
}
