package logger

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode"

	"github.com/smallbiznis/quotation/pkg/log/ctxlogger"
	"go.uber.org/zap"
	gormlogger "gorm.io/gorm/logger"
)

const defaultSlowQuery = 200 * time.Millisecond

// GormLogger routes gorm output through zap with request correlation fields.
type GormLogger struct {
	base          *zap.Logger
	level         gormlogger.LogLevel
	slowThreshold time.Duration
}

// NewGormLogger logs warnings and slow queries by default, and every
// statement when the application runs at debug level.
func NewGormLogger(base *zap.Logger, appLevel string) *GormLogger {
	level := gormlogger.Warn
	if strings.EqualFold(strings.TrimSpace(appLevel), "debug") {
		level = gormlogger.Info
	}
	return &GormLogger{
		base:          base.Named("gorm"),
		level:         level,
		slowThreshold: defaultSlowQuery,
	}
}

func (l *GormLogger) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	next := *l
	next.level = level
	return &next
}

func (l *GormLogger) Info(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Info {
		l.with(ctx).Info(msg, zap.Any("data", data))
	}
}

func (l *GormLogger) Warn(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Warn {
		l.with(ctx).Warn(msg, zap.Any("data", data))
	}
}

func (l *GormLogger) Error(ctx context.Context, msg string, data ...interface{}) {
	if l.level >= gormlogger.Error {
		l.with(ctx).Error(msg, zap.Any("data", data))
	}
}

// Trace logs failed statements, slow statements, and at Info level everything.
// Not-found results are expected by repositories and never logged as errors.
func (l *GormLogger) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if l.level <= gormlogger.Silent {
		return
	}

	elapsed := time.Since(begin)
	sql, rows := fc()
	fields := []zap.Field{
		zap.String("operation", operationFromSQL(sql)),
		zap.Int64("duration_ms", elapsed.Milliseconds()),
		zap.Int64("rows", rows),
	}

	log := l.with(ctx)
	switch {
	case err != nil && !errors.Is(err, gormlogger.ErrRecordNotFound) && l.level >= gormlogger.Error:
		log.Error("db.query_failed", append(fields, zap.String("sql", sql), zap.Error(err))...)
	case l.slowThreshold > 0 && elapsed > l.slowThreshold && l.level >= gormlogger.Warn:
		log.Warn("db.slow_query", append(fields, zap.String("sql", sql))...)
	case l.level >= gormlogger.Info:
		log.Debug("db.query", append(fields, zap.String("sql", sql))...)
	}
}

// ParamsFilter drops bound values so customer data never reaches the logs.
func (l *GormLogger) ParamsFilter(_ context.Context, sql string, _ ...interface{}) (string, []interface{}) {
	return sql, nil
}

func (l *GormLogger) with(ctx context.Context) *zap.Logger {
	return ctxlogger.WithContext(ctx, l.base)
}

// operationFromSQL returns the statement verb. Keywords nested in
// parentheses (CTE bodies, subqueries) are ignored unless the statement has
// no top-level verb at all.
func operationFromSQL(sql string) string {
	nested := ""
	depth := 0
	word := strings.Builder{}
	flush := func() string {
		token := strings.ToUpper(word.String())
		word.Reset()
		switch token {
		case "SELECT", "INSERT", "UPDATE", "DELETE":
			if depth == 0 {
				return token
			}
			if nested == "" {
				nested = token
			}
		}
		return ""
	}

	for _, r := range sql {
		switch {
		case r == '(':
			if op := flush(); op != "" {
				return op
			}
			depth++
		case r == ')':
			if op := flush(); op != "" {
				return op
			}
			if depth > 0 {
				depth--
			}
		case unicode.IsLetter(r), unicode.IsDigit(r), r == '_':
			word.WriteRune(r)
		default:
			if op := flush(); op != "" {
				return op
			}
		}
	}
	if op := flush(); op != "" {
		return op
	}
	if nested != "" {
		return nested
	}
	return "UNKNOWN"
}

var _ gormlogger.Interface = (*GormLogger)(nil)
