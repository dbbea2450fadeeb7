package user

import (
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/yungbote/tutor-backend/internal/data/aggregates"
	types "github.com/yungbote/tutor-backend/internal/domain"
	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type UserRepo interface {
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error)
	// EnsureUser creates the profile on first sight and returns the stored row.
	EnsureUser(dbc dbctx.Context, u *types.User) (*types.User, error)
	Update(dbc dbctx.Context, u *types.User) error
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	return &userRepo{db: db, log: baseLog.With("repo", "UserRepo")}
}

func (r *userRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.User, error) {
	var row types.User
	err := dbc.DB(r.db).Where("id = ?", id).Take(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("user", id.String())
	}
	if err != nil {
		return nil, aggregates.MapError("user.get", err)
	}
	return &row, nil
}

func (r *userRepo) EnsureUser(dbc dbctx.Context, u *types.User) (*types.User, error) {
	if u == nil || u.ID == uuid.Nil {
		return nil, apperr.Invalid("user id is required")
	}
	if len(u.Preferences) == 0 {
		u.Preferences = []byte("{}")
	}
	u.Email = strings.TrimSpace(u.Email)
	err := dbc.DB(r.db).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "id"}}, DoNothing: true}).
		Create(u).Error
	if err != nil {
		return nil, aggregates.MapError("user.ensure", err)
	}
	return r.GetByID(dbc, u.ID)
}

func (r *userRepo) Update(dbc dbctx.Context, u *types.User) error {
	if u == nil || u.ID == uuid.Nil {
		return apperr.Invalid("user id is required")
	}
	res := dbc.DB(r.db).Model(&types.User{}).Where("id = ?", u.ID).Updates(map[string]interface{}{
		"display_name": u.DisplayName,
		"avatar_url":   u.AvatarURL,
		"preferences":  u.Preferences,
		"updated_at":   time.Now().UTC(),
	})
	if res.Error != nil {
		return aggregates.MapError("user.update", res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.NotFound("user", u.ID.String())
	}
	return nil
}
