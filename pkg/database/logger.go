package database

import (
	"context"
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/atdaga/skrm-server/pkg/log"
)

// zerologGorm routes GORM's query log through the context logger so SQL
// lines carry the request id.
type zerologGorm struct {
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewLogger returns a GORM logger backed by pkg/log. level is one of
// silent, error, warn, info (default warn).
func NewLogger(level string, slowThreshold time.Duration) gormlogger.Interface {
	if slowThreshold <= 0 {
		slowThreshold = 200 * time.Millisecond
	}
	return &zerologGorm{level: parseGormLevel(level), slowThreshold: slowThreshold}
}

func parseGormLevel(s string) gormlogger.LogLevel {
	switch s {
	case "silent":
		return gormlogger.Silent
	case "error":
		return gormlogger.Error
	case "info":
		return gormlogger.Info
	default:
		return gormlogger.Warn
	}
}

func (z *zerologGorm) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	clone := *z
	clone.level = level
	return &clone
}

func (z *zerologGorm) Info(ctx context.Context, msg string, args ...interface{}) {
	if z.level >= gormlogger.Info {
		l := log.Ctx(ctx)
		l.Info().Msg(fmt.Sprintf(msg, args...))
	}
}

func (z *zerologGorm) Warn(ctx context.Context, msg string, args ...interface{}) {
	if z.level >= gormlogger.Warn {
		l := log.Ctx(ctx)
		l.Warn().Msg(fmt.Sprintf(msg, args...))
	}
}

func (z *zerologGorm) Error(ctx context.Context, msg string, args ...interface{}) {
	if z.level >= gormlogger.Error {
		l := log.Ctx(ctx)
		l.Error().Msg(fmt.Sprintf(msg, args...))
	}
}

func (z *zerologGorm) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if z.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	l := log.Ctx(ctx)

	switch {
	case err != nil && z.level >= gormlogger.Error && !errors.Is(err, gorm.ErrRecordNotFound):
		sql, rows := fc()
		l.Error().Err(err).Str(log.FieldSQL, sql).Int64(log.FieldRowsAffected, rows).
			Float64(log.FieldLatency, float64(elapsed.Milliseconds())).Msg("query failed")
	case elapsed > z.slowThreshold && z.level >= gormlogger.Warn:
		sql, rows := fc()
		l.Warn().Str(log.FieldSQL, sql).Int64(log.FieldRowsAffected, rows).
			Float64(log.FieldLatency, float64(elapsed.Milliseconds())).Msg("slow query")
	case z.level >= gormlogger.Info:
		sql, rows := fc()
		l.Debug().Str(log.FieldSQL, sql).Int64(log.FieldRowsAffected, rows).
			Float64(log.FieldLatency, float64(elapsed.Milliseconds())).Msg("query")
	}
}
