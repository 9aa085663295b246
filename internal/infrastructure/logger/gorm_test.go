package logger

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
	gormlogger "gorm.io/gorm/logger"
)

func TestGormLogger_Trace(t *testing.T) {
	sqlFn := func() (string, int64) { return "SELECT * FROM charges", 3 }

	t.Run("errors are logged with request id", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 200*time.Millisecond)
		ctx := WithRequestID(context.Background(), "req-7")

		l.Trace(ctx, time.Now(), sqlFn, errors.New("connection reset"))

		logs := recorded.FilterMessage("SQL Error").All()
		assert.Len(t, logs, 1)
		assert.Equal(t, "req-7", logs[0].ContextMap()["request_id"])
	})

	t.Run("record not found is ignored", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 0)

		l.Trace(context.Background(), time.Now(), sqlFn, gormlogger.ErrRecordNotFound)
		assert.Zero(t, recorded.Len())
	})

	t.Run("slow queries warn", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, nil)
		assert.Equal(t, 1, recorded.FilterMessage("Slow SQL").Len())
	})

	t.Run("silent logs nothing", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Silent, time.Millisecond)

		l.Trace(context.Background(), time.Now().Add(-time.Second), sqlFn, errors.New("x"))
		assert.Zero(t, recorded.Len())
	})

	t.Run("info level logs every statement at debug", func(t *testing.T) {
		core, recorded := observer.New(zapcore.DebugLevel)
		l := NewGormLogger(zap.New(core), gormlogger.Warn, 0).LogMode(gormlogger.Info)

		l.Trace(context.Background(), time.Now(), sqlFn, nil)
		assert.Equal(t, 1, recorded.FilterMessage("SQL Query").Len())
	})
}

func TestMapGormLogLevel(t *testing.T) {
	assert.Equal(t, gormlogger.Silent, MapGormLogLevel("silent"))
	assert.Equal(t, gormlogger.Error, MapGormLogLevel("error"))
	assert.Equal(t, gormlogger.Info, MapGormLogLevel("debug"))
	assert.Equal(t, gormlogger.Warn, MapGormLogLevel(""))
}
