package user

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

func TestUserRepo(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	dbc := dbctx.Context{Ctx: context.Background(), Tx: tx}
	repo := NewUserRepo(db, testutil.Logger(t))

	id := uuid.New()
	if _, err := repo.GetByID(dbc, id); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found, got %v", err)
	}

	u, err := repo.EnsureUser(dbc, &types.User{ID: id, Email: " learner@example.com ", DisplayName: "Learner"})
	if err != nil {
		t.Fatalf("EnsureUser: %v", err)
	}
	if u.Email != "learner@example.com" {
		t.Fatalf("email not trimmed: %q", u.Email)
	}

	again, err := repo.EnsureUser(dbc, &types.User{ID: id, DisplayName: "Someone Else"})
	if err != nil || again.DisplayName != "Learner" {
		t.Fatalf("second EnsureUser must not overwrite: err=%v name=%q", err, again.DisplayName)
	}

	if err := u.MergePreferences(map[string]any{
		"learning_preferences": map[string]any{"preferred_subjects": []string{"Physics"}, "difficulty_preference": "Intermediate"},
	}); err != nil {
		t.Fatalf("MergePreferences: %v", err)
	}
	if err := repo.Update(dbc, u); err != nil {
		t.Fatalf("Update: %v", err)
	}
	got, err := repo.GetByID(dbc, id)
	if err != nil {
		t.Fatalf("GetByID: %v", err)
	}
	prefs := got.LearningPreferences()
	if len(prefs.PreferredSubjects) != 1 || prefs.PreferredSubjects[0] != "Physics" || prefs.DifficultyPreference != "intermediate" {
		t.Fatalf("unexpected preferences: %+v", prefs)
	}

	if err := repo.Update(dbc, &types.User{ID: uuid.New()}); !apperr.IsNotFound(err) {
		t.Fatalf("expected not found on update of missing user, got %v", err)
	}
}
