package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTracedDB(t *testing.T, cfg DBTracingConfig) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))
	return db
}

func spanAttrs(s sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := make(map[attribute.Key]attribute.Value)
	for _, a := range s.Attributes() {
		m[a.Key] = a.Value
	}
	return m
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()
	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestDBTracingPlugin_Disabled(t *testing.T) {
	db := setupTracedDB(t, DefaultDBTracingConfig())
	assert.Nil(t, db.Callback().Query().Get("slow_query:after_query"))
}

func TestDBTracingPlugin_AnnotatesSpans(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	db := setupTracedDB(t, DBTracingConfig{Enabled: true, DBSystem: "sqlite", TracerProvider: tp})

	ctx, parent := tp.Tracer("test").Start(context.Background(), "payment.post")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "a"}).Error)
	parent.End()

	var found bool
	for _, s := range sr.Ended() {
		attrs := spanAttrs(s)
		if v, ok := attrs["db.rows_affected"]; ok {
			assert.Equal(t, int64(1), v.AsInt64())
			found = true
		}
	}
	assert.True(t, found, "expected a span annotated with db.rows_affected")
}

func TestDBTracingPlugin_MarksSlowQueries(t *testing.T) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	defer func() { _ = tp.Shutdown(context.Background()) }()

	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Millisecond}, zap.NewNop())

	ctx, span := tp.Tracer("test").Start(context.Background(), "query")
	stmt := &gorm.DB{Statement: &gorm.Statement{Context: ctx, Table: "charges", RowsAffected: 3}}
	stmt.Statement.DB = stmt

	p.before(stmt)
	time.Sleep(5 * time.Millisecond)
	p.after(stmt)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	attrs := spanAttrs(ended[0])
	assert.True(t, attrs["db.slow_query"].AsBool())
	assert.Equal(t, "charges", attrs["db.sql.table"].AsString())
	assert.Equal(t, int64(3), attrs["db.rows_affected"].AsInt64())
	require.Len(t, ended[0].Events(), 1)
	assert.Equal(t, "slow_query_warning", ended[0].Events()[0].Name)
}
