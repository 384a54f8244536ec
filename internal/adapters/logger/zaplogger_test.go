package logger

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want LogLevel
	}{
		{"debug", LevelDebug},
		{"INFO", LevelInfo},
		{"warning", LevelWarn},
		{"Error", LevelError},
		{"verbose", LevelInfo},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseLevel(tt.in), tt.in)
	}
	assert.Equal(t, "WARN", LevelWarn.String())
	assert.Equal(t, "UNKNOWN", LogLevel(42).String())
}

func TestNewZapLogger(t *testing.T) {
	l, err := NewZapLogger(LevelDebug, "console")
	require.NoError(t, err)
	assert.NotNil(t, l)

	_, err = NewZapLogger(LevelInfo, "xml")
	assert.Error(t, err)
}

func TestZapLogger_Fields(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	l := NewFromZap(zap.New(core))
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "scan started", map[string]interface{}{"sector": "白酒", "candidates": 5})
	l.Warn(ctx, "no fields")
	l.Error(ctx, errors.New("boom"), "fetch failed", map[string]interface{}{"symbol": "600519"})

	entries := logs.All()
	require.Len(t, entries, 3)

	assert.Equal(t, "scan started", entries[0].Message)
	assert.Equal(t, "白酒", entries[0].ContextMap()["sector"])
	assert.EqualValues(t, 5, entries[0].ContextMap()["candidates"])

	assert.Equal(t, zapcore.WarnLevel, entries[1].Level)
	assert.Empty(t, entries[1].Context)

	assert.Equal(t, zapcore.ErrorLevel, entries[2].Level)
	assert.Equal(t, "boom", entries[2].ContextMap()["error"])
	assert.Equal(t, "600519", entries[2].ContextMap()["symbol"])
}
