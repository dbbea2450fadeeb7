package db

import (
	"fmt"

	"gorm.io/gorm"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

func AutoMigrateAll(db *gorm.DB) error {
	if err := db.AutoMigrate(types.Models()...); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return nil
}

// EnsureIndexes creates indexes gorm tags cannot express. Postgres only.
func EnsureIndexes(db *gorm.DB) error {
	if db.Dialector.Name() != DriverPostgres {
		return nil
	}
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_lesson_created_at_desc", `CREATE INDEX IF NOT EXISTS idx_lesson_created_at_desc ON lesson (created_at DESC) WHERE deleted_at IS NULL;`},
		{"idx_lesson_subject_difficulty", `CREATE INDEX IF NOT EXISTS idx_lesson_subject_difficulty ON lesson (subject, difficulty) WHERE deleted_at IS NULL;`},
		{"idx_activity_event_user_type_ts", `CREATE INDEX IF NOT EXISTS idx_activity_event_user_type_ts ON activity_event (user_id, type, occurred_at DESC);`},
		{"idx_lesson_tags_gin", `CREATE INDEX IF NOT EXISTS idx_lesson_tags_gin ON lesson USING GIN (tags);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}
