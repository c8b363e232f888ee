package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestNewDefaultsToInfo(t *testing.T) {
	log, err := New(Options{})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.InfoLevel))
	assert.False(t, log.Core().Enabled(zapcore.DebugLevel))
}

func TestNewRejectsUnknownLevel(t *testing.T) {
	_, err := New(Options{Level: "verbose"})
	assert.Error(t, err)
}

func TestNewDevelopmentHonoursLevel(t *testing.T) {
	log, err := New(Options{Level: "WARN", Development: true})
	require.NoError(t, err)
	assert.True(t, log.Core().Enabled(zapcore.WarnLevel))
	assert.False(t, log.Core().Enabled(zapcore.InfoLevel))
}

func TestGormLoggerTrace(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	gl := NewGormLogger(zap.New(core), "info")
	ctx := context.Background()
	begin := time.Now()

	gl.Trace(ctx, begin, func() (string, int64) { return "SELECT * FROM package_assignments", 1 }, nil)
	assert.Equal(t, 0, logs.Len())

	gl.Trace(ctx, begin, func() (string, int64) { return "UPDATE package_assignments SET x = ?", 0 }, errors.New("disk full"))
	require.Equal(t, 1, logs.Len())
	entry := logs.All()[0]
	assert.Equal(t, "db.query_failed", entry.Message)
	assert.Equal(t, "UPDATE", entry.ContextMap()["operation"])

	gl.Trace(ctx, begin, func() (string, int64) { return "SELECT 1", 0 }, gormlogger.ErrRecordNotFound)
	assert.Equal(t, 1, logs.Len())

	debug := NewGormLogger(zap.New(core), "debug")
	debug.Trace(ctx, begin, func() (string, int64) { return "WITH x AS (SELECT 1) DELETE FROM add_ons", 2 }, nil)
	require.Equal(t, 2, logs.Len())
	assert.Equal(t, "DELETE", logs.All()[1].ContextMap()["operation"])
}

func TestOperationFromSQL(t *testing.T) {
	cases := []struct {
		sql  string
		want string
	}{
		{"SELECT * FROM package_assignments WHERE id = ?", "SELECT"},
		{"  insert into add_ons (id) values (?)", "INSERT"},
		{"WITH x AS (SELECT 1) DELETE FROM add_ons", "DELETE"},
		{"WITH moved AS (SELECT id FROM package_assignments WHERE version = ?) UPDATE package_assignments SET notes = ?", "UPDATE"},
		{"WITH update_log AS (SELECT 1) SELECT * FROM update_log", "SELECT"},
		{"(SELECT id FROM add_ons) UNION (SELECT id FROM service_packages)", "SELECT"},
		{"BEGIN", "UNKNOWN"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, operationFromSQL(tc.sql), tc.sql)
	}
}
