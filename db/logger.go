package db

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/arkankau/coffee-chatted/internal/logutil"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// gormLogger sends gorm output to slog instead of stdout.
type gormLogger struct {
	log   *slog.Logger
	level gormlogger.LogLevel
}

func newGormLogger(log *slog.Logger) gormlogger.Interface {
	if log == nil {
		log = logutil.Discard()
	}
	return &gormLogger{log: log, level: gormlogger.Warn}
}

func (l *gormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *gormLogger) Info(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Info {
		l.log.InfoContext(ctx, "sqlite_info", "message", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Warn(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Warn {
		l.log.WarnContext(ctx, "sqlite_warn", "message", fmt.Sprintf(msg, args...))
	}
}

func (l *gormLogger) Error(ctx context.Context, msg string, args ...any) {
	if l.level >= gormlogger.Error {
		l.log.ErrorContext(ctx, "sqlite_error", "message", fmt.Sprintf(msg, args...))
	}
}

// Trace logs every statement at debug. Missing rows are not errors here;
// callers map them to their own not-found errors.
func (l *gormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		sql, rows := fc()
		l.log.DebugContext(ctx, "sqlite_query_failed", "sql", sql, "rows", rows, "elapsed", time.Since(begin), "error", err.Error())
		return
	}
	if !l.log.Enabled(ctx, slog.LevelDebug) {
		return
	}
	sql, rows := fc()
	l.log.DebugContext(ctx, "sqlite_query", "sql", sql, "rows", rows, "elapsed", time.Since(begin))
}
