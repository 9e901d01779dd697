package db

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"habitflow/pkg/config"
)

func TestDSN(t *testing.T) {
	dsn := DSN(config.DBConfig{User: "u", Password: "p", Host: "h", Port: 5432, Name: "habits"})
	assert.Equal(t, "postgres://u:p@h:5432/habits?sslmode=disable", dsn)

	dsn = DSN(config.DBConfig{User: "u", Password: "p", Host: "h", Port: 6543, Name: "x", SSLMode: "require"})
	assert.True(t, strings.HasSuffix(dsn, "sslmode=require"))
}

func TestSlowQueryTracer(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	tracer := NewSlowQueryTracer(zap.New(core), time.Nanosecond)

	ctx := tracer.TraceQueryStart(context.Background(), nil, pgx.TraceQueryStartData{SQL: "SELECT 1"})
	time.Sleep(time.Millisecond)
	tracer.TraceQueryEnd(ctx, nil, pgx.TraceQueryEndData{CommandTag: pgconn.NewCommandTag("SELECT 1")})

	entries := logs.All()
	if assert.Len(t, entries, 1) {
		assert.Equal(t, "slow-query", entries[0].Message)
		assert.Equal(t, "SELECT 1", entries[0].ContextMap()["sql"])
	}

	// no start data in context: ignored
	tracer.TraceQueryEnd(context.Background(), nil, pgx.TraceQueryEndData{})
	assert.Len(t, logs.All(), 1)
}

func TestTruncateSQL(t *testing.T) {
	assert.Equal(t, "unknown", truncateSQL(""))
	long := strings.Repeat("x", 250)
	assert.Len(t, truncateSQL(long), 203)
}
