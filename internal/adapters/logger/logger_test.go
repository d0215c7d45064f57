package logger

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

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
		{"Warning", LevelWarn},
		{" error ", LevelError},
		{"verbose", LevelInfo},
		{"", LevelInfo},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, ParseLevel(tt.in))
		})
	}
}

func TestStdLogger_FiltersAndFormats(t *testing.T) {
	var buf bytes.Buffer
	l := NewStdLoggerTo(&buf, LevelInfo)
	l.now = func() time.Time { return time.Date(2024, 3, 1, 11, 0, 0, 0, time.FixedZone("CET", 3600)) }
	ctx := context.Background()

	l.Debug(ctx, "hidden")
	l.Info(ctx, "loaded transactions", map[string]interface{}{"path": "my wallet.json", "count": 3})
	l.Error(ctx, errors.New("boom"), "quote failed", map[string]interface{}{"ticker": "ETH-USD", "note": ""})

	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Len(t, lines, 2)
	assert.Equal(t, `2024-03-01T10:00:00Z INFO  wallet: loaded transactions count=3 path="my wallet.json"`, lines[0])
	assert.Equal(t, `2024-03-01T10:00:00Z ERROR wallet: quote failed error=boom note="" ticker=ETH-USD`, lines[1])
	assert.NoError(t, l.Sync())
}

func TestZapLogger_WritesFieldsAndErrors(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	l := NewZapLoggerFrom(zap.New(core))
	ctx := context.Background()

	l.Info(ctx, "snapshot built", map[string]interface{}{"assets": 2})
	l.Error(ctx, errors.New("timeout"), "quote failed", map[string]interface{}{"ticker": "BTC-USD"})

	require.Equal(t, 2, logs.Len())
	entries := logs.All()
	assert.Equal(t, "snapshot built", entries[0].Message)
	assert.Equal(t, int64(2), entries[0].ContextMap()["assets"])
	assert.Equal(t, zapcore.ErrorLevel, entries[1].Level)
	assert.Equal(t, "BTC-USD", entries[1].ContextMap()["ticker"])
	assert.Equal(t, "timeout", entries[1].ContextMap()["error"])
}

func TestNew_SelectsAdapter(t *testing.T) {
	l, err := New("std", LevelWarn)
	require.NoError(t, err)
	assert.IsType(t, &StdLogger{}, l)

	l, err = New("json", LevelWarn)
	require.NoError(t, err)
	assert.IsType(t, &ZapLogger{}, l)

	_, err = New("xml", LevelWarn)
	assert.Error(t, err)
}
