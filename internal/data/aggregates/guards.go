package aggregates

import (
	"errors"
	"strings"

	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/pkg/dbctx"
	apperr "github.com/yungbote/tutor-backend/internal/pkg/errors"
)

// CASGuard provides optimistic concurrency helpers for whole-document writes.
type CASGuard struct {
	db *gorm.DB
}

func NewCASGuard(db *gorm.DB) CASGuard {
	return CASGuard{db: db}
}

func (g CASGuard) baseDB(dbc dbctx.Context) (*gorm.DB, error) {
	if dbc.Tx == nil && g.db == nil {
		return nil, apperr.Invalid("missing db transaction context")
	}
	return dbc.DB(g.db), nil
}

// UpdateByVersion updates the row matching keyColumn=key and version=expected,
// bumping version by one. It reports whether a row matched.
func (g CASGuard) UpdateByVersion(dbc dbctx.Context, table, keyColumn string, key any, expectedVersion int, updates map[string]any) (bool, error) {
	db, err := g.baseDB(dbc)
	if err != nil {
		return false, err
	}
	table = strings.TrimSpace(table)
	keyColumn = strings.TrimSpace(keyColumn)
	if table == "" || keyColumn == "" || key == nil {
		return false, apperr.Invalid("table, key column and key are required for UpdateByVersion")
	}
	if expectedVersion < 0 {
		return false, apperr.Invalid("expectedVersion must be >= 0")
	}
	set := make(map[string]any, len(updates)+1)
	for k, v := range updates {
		set[k] = v
	}
	set["version"] = expectedVersion + 1
	res := db.Table(table).
		Where(keyColumn+" = ? AND version = ?", key, expectedVersion).
		Updates(set)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

// RequireCASSuccess converts a failed compare-and-set into a conflict error.
func RequireCASSuccess(ok bool, op string) error {
	if ok {
		return nil
	}
	return apperr.Conflict(op, errors.New("version mismatch"))
}

// RequireVersionMatch validates version equality for optimistic locking flows.
func RequireVersionMatch(op string, current, expected int) error {
	if expected < 0 {
		return apperr.Invalid("expected version must be >= 0")
	}
	if current != expected {
		return apperr.Conflict(op, errors.New("version mismatch"))
	}
	return nil
}
