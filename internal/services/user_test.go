package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	types "github.com/yungbote/tutor-backend/internal/domain"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

func TestUpdateMe_MergesPreferences(t *testing.T) {
	users := newMemUsers()
	svc := NewUserService(logger.Nop(), users)
	userID := uuid.New()
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: userID, Email: "ada@example.com"})

	name := "  Ada  "
	u, err := svc.UpdateMe(ctx, UpdateMeRequest{
		DisplayName: &name,
		Preferences: map[string]any{
			"learning_preferences": map[string]any{
				"preferred_subjects":    []any{"Math"},
				"difficulty_preference": "Intermediate",
			},
			"theme": "dark",
		},
	})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	if u.DisplayName != "Ada" {
		t.Fatalf("unexpected name %q", u.DisplayName)
	}
	lp := u.LearningPreferences()
	if lp.DifficultyPreference != types.DifficultyIntermediate || len(lp.PreferredSubjects) != 1 {
		t.Fatalf("unexpected learning preferences: %+v", lp)
	}

	u, err = svc.UpdateMe(ctx, UpdateMeRequest{Preferences: map[string]any{"language": "en"}})
	if err != nil {
		t.Fatalf("UpdateMe: %v", err)
	}
	prefs := u.PreferencesMap()
	if prefs["theme"] != "dark" || prefs["language"] != "en" {
		t.Fatalf("preferences should merge, got %v", prefs)
	}
}

func TestUpdateMe_Validation(t *testing.T) {
	svc := NewUserService(logger.Nop(), newMemUsers())
	ctx := ctxutil.WithRequestData(context.Background(), &ctxutil.RequestData{UserID: uuid.New()})

	_, err := svc.UpdateMe(ctx, UpdateMeRequest{Preferences: map[string]any{
		"learning_preferences": map[string]any{"difficulty_preference": "expert"},
	}})
	if !apperr.IsInvalid(err) {
		t.Fatalf("expected invalid, got %v", err)
	}
	blank := " "
	if _, err := svc.UpdateMe(ctx, UpdateMeRequest{DisplayName: &blank}); !apperr.IsInvalid(err) {
		t.Fatalf("expected invalid name, got %v", err)
	}
	if _, err := svc.GetMe(context.Background()); !errors.Is(err, apperr.ErrUnauthorized) {
		t.Fatalf("expected unauthorized without request data, got %v", err)
	}
}
