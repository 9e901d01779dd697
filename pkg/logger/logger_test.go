package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"habitflow/pkg/config"
	"habitflow/pkg/trace"
)

func TestNewLogger_Level(t *testing.T) {
	l := NewLogger(config.LogConfig{Level: "warn"})
	assert.False(t, l.Core().Enabled(zapcore.InfoLevel))
	assert.True(t, l.Core().Enabled(zapcore.WarnLevel))
	assert.Same(t, l, Log)
}

func TestWithTrace(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	base := zap.New(core)

	WithTrace(context.Background(), base).Info("no trace")
	WithTrace(trace.WithContext(context.Background(), "t-1"), base).Info("traced")

	entries := logs.All()
	assert.Len(t, entries, 2)
	assert.Empty(t, entries[0].ContextMap())
	assert.Equal(t, "t-1", entries[1].ContextMap()["trace_id"])
}
