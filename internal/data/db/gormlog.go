package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/yungbote/tutor-backend/internal/platform/logger"
)

// GormLogger routes gorm's logging through zap.
type GormLogger struct {
	log           *logger.Logger
	level         gormLogger.LogLevel
	slowThreshold time.Duration
}

func NewGormLogger(baseLog *logger.Logger, slow time.Duration) *GormLogger {
	return &GormLogger{
		log:           baseLog.With("component", "gorm"),
		level:         gormLogger.Warn,
		slowThreshold: slow,
	}
}

func (g *GormLogger) LogMode(level gormLogger.LogLevel) gormLogger.Interface {
	cp := *g
	cp.level = level
	return &cp
}

func (g *GormLogger) Info(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Info {
		g.log.Info(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Warn(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Warn {
		g.log.Warn(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Error(ctx context.Context, msg string, args ...interface{}) {
	if g.level >= gormLogger.Error {
		g.log.Error(fmt.Sprintf(msg, args...))
	}
}

func (g *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if g.level <= gormLogger.Silent {
		return
	}
	elapsed := time.Since(begin)
	switch {
	case err != nil && !errors.Is(err, gorm.ErrRecordNotFound) && g.level >= gormLogger.Error:
		sql, rows := fc()
		g.log.Error("gorm query failed", "error", err, "duration_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	case g.slowThreshold > 0 && elapsed > g.slowThreshold && g.level >= gormLogger.Warn:
		sql, rows := fc()
		g.log.Warn("slow query", "duration_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	case g.level >= gormLogger.Info:
		sql, rows := fc()
		g.log.Debug("gorm query", "duration_ms", elapsed.Milliseconds(), "rows", rows, "sql", sql)
	}
}
