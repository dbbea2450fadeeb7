package services

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/yungbote/tutor-backend/internal/data/repos"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/ctxutil"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type UpdateMeRequest struct {
	DisplayName *string        `json:"display_name,omitempty"`
	AvatarURL   *string        `json:"avatar_url,omitempty"`
	Preferences map[string]any `json:"preferences,omitempty"`
}

type UserService interface {
	GetMe(ctx context.Context) (*types.User, error)
	UpdateMe(ctx context.Context, req UpdateMeRequest) (*types.User, error)
}

type userService struct {
	log   *logger.Logger
	users repos.UserRepo
}

func NewUserService(log *logger.Logger, users repos.UserRepo) UserService {
	return &userService{log: log.With("service", "UserService"), users: users}
}

func (s *userService) GetMe(ctx context.Context) (*types.User, error) {
	rd := ctxutil.GetRequestData(ctx)
	if rd == nil || rd.UserID == uuid.Nil {
		return nil, apperr.ErrUnauthorized
	}
	return s.users.EnsureUser(dbctx.New(ctx), &types.User{ID: rd.UserID, Email: rd.Email, DisplayName: rd.DisplayName})
}

func (s *userService) UpdateMe(ctx context.Context, req UpdateMeRequest) (*types.User, error) {
	u, err := s.GetMe(ctx)
	if err != nil {
		return nil, err
	}
	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if name == "" || len(name) > 100 {
			return nil, apperr.Invalid("display_name must be 1-100 characters")
		}
		u.DisplayName = name
	}
	if req.AvatarURL != nil {
		u.AvatarURL = strings.TrimSpace(*req.AvatarURL)
	}
	if req.Preferences != nil {
		if lp, ok := req.Preferences["learning_preferences"].(map[string]any); ok {
			if d, ok := lp["difficulty_preference"].(string); ok && d != "" {
				nd, known := types.NormalizeDifficulty(d)
				if !known {
					return nil, apperr.Invalid("unknown difficulty_preference %q", d)
				}
				lp["difficulty_preference"] = nd
			}
		}
		if err := u.MergePreferences(req.Preferences); err != nil {
			return nil, apperr.Invalid("preferences: %v", err)
		}
	}
	if err := s.users.Update(dbctx.New(ctx), u); err != nil {
		return nil, err
	}
	s.log.Debug("profile updated", "user_id", u.ID)
	return u, nil
}
