package repos

import (
	"go.mongodb.org/mongo-driver/v2/mongo"
	"gorm.io/gorm"

	"github.com/yungbote/tutor-backend/internal/data/repos/learning"
	"github.com/yungbote/tutor-backend/internal/data/repos/mongorepo"
	"github.com/yungbote/tutor-backend/internal/data/repos/user"
	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

type UserRepo = user.UserRepo

type LessonRepo = learning.LessonRepo
type LessonFilter = learning.LessonFilter
type ProgressRepo = learning.ProgressRepo
type ActivityRepo = learning.ActivityRepo
type AchievementRepo = learning.AchievementRepo
type QARepo = learning.QARepo
type QAFilter = learning.QAFilter

// Set groups the stores the services depend on.
type Set struct {
	Users        UserRepo
	Lessons      LessonRepo
	Progress     ProgressRepo
	Activity     ActivityRepo
	Achievements AchievementRepo
	QA           QARepo
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo { return user.NewUserRepo(db, baseLog) }

func NewLessonRepo(db *gorm.DB, baseLog *logger.Logger) LessonRepo {
	return learning.NewLessonRepo(db, baseLog)
}
func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return learning.NewProgressRepo(db, baseLog)
}
func NewActivityRepo(db *gorm.DB, baseLog *logger.Logger) ActivityRepo {
	return learning.NewActivityRepo(db, baseLog)
}
func NewAchievementRepo(db *gorm.DB, baseLog *logger.Logger) AchievementRepo {
	return learning.NewAchievementRepo(db, baseLog)
}
func NewQARepo(db *gorm.DB, baseLog *logger.Logger) QARepo { return learning.NewQARepo(db, baseLog) }

// NewGormSet builds the SQL-backed stores.
func NewGormSet(db *gorm.DB, baseLog *logger.Logger) Set {
	return Set{
		Users:        NewUserRepo(db, baseLog),
		Lessons:      NewLessonRepo(db, baseLog),
		Progress:     NewProgressRepo(db, baseLog),
		Activity:     NewActivityRepo(db, baseLog),
		Achievements: NewAchievementRepo(db, baseLog),
		QA:           NewQARepo(db, baseLog),
	}
}

// NewMongoSet builds the document-store backed stores.
func NewMongoSet(db *mongo.Database, baseLog *logger.Logger) Set {
	return Set{
		Users:        mongorepo.NewUserRepo(db, baseLog),
		Lessons:      mongorepo.NewLessonRepo(db, baseLog),
		Progress:     mongorepo.NewProgressRepo(db, baseLog),
		Activity:     mongorepo.NewActivityRepo(db, baseLog),
		Achievements: mongorepo.NewAchievementRepo(db, baseLog),
		QA:           mongorepo.NewQARepo(db, baseLog),
	}
}
