package testutil

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/yungbote/tutor-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, email string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:          uuid.New(),
		Email:       email,
		DisplayName: "Test User",
		Preferences: datatypes.JSON([]byte(`{"learning_preferences":{"preferred_subjects":["Mathematics"],"difficulty_preference":"beginner"}}`)),
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedLesson(tb testing.TB, ctx context.Context, tx *gorm.DB, subject, difficulty string, createdAt time.Time, tags ...string) *types.Lesson {
	tb.Helper()
	l := &types.Lesson{
		ID:              uuid.New(),
		Subject:         subject,
		Topic:           "topic",
		Title:           subject + " lesson",
		Difficulty:      difficulty,
		DurationMinutes: 30,
		Content:         datatypes.JSON([]byte("[]")),
		Exercises:       datatypes.JSON([]byte("[]")),
		Resources:       datatypes.JSON([]byte("[]")),
		CreatedAt:       createdAt,
		UpdatedAt:       createdAt,
	}
	l.SetTags(tags)
	if err := tx.WithContext(ctx).Create(l).Error; err != nil {
		tb.Fatalf("seed lesson: %v", err)
	}
	return l
}

func SeedActivity(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, typ string, ts time.Time, lessonID *uuid.UUID, timeSpent int) *types.ActivityEvent {
	tb.Helper()
	e := types.NewActivityEvent(userID, typ, ts, lessonID, &timeSpent, nil, nil)
	if err := tx.WithContext(ctx).Create(e).Error; err != nil {
		tb.Fatalf("seed activity: %v", err)
	}
	return e
}
