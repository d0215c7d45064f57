package logger

import (
	"context"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"cryptoWallet/internal/ports"
)

// StdLogger writes one logfmt line per entry, for example
//
//	2024-03-01T10:00:00Z WARN  wallet: quote unavailable error="rate limited" ticker=ETH-USD
//
// Lines go to stderr so that stdout stays reserved for command output.
type StdLogger struct {
	mu    sync.Mutex
	w     io.Writer
	level LogLevel
	now   func() time.Time
}

// NewStdLogger creates a logger writing to os.Stderr.
func NewStdLogger(level LogLevel) *StdLogger {
	return NewStdLoggerTo(os.Stderr, level)
}

// NewStdLoggerTo creates a logger writing to w.
func NewStdLoggerTo(w io.Writer, level LogLevel) *StdLogger {
	return &StdLogger{w: w, level: level, now: time.Now}
}

func (l *StdLogger) log(level LogLevel, msg string, err error, fields ...ports.Fields) {
	if level < l.level {
		return
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "%s %-5s wallet: %s", l.now().UTC().Format(time.RFC3339), level, msg)
	if err != nil {
		sb.WriteString(" error=")
		sb.WriteString(logfmtValue(err.Error()))
	}
	if len(fields) > 0 {
		keys := make([]string, 0, len(fields[0]))
		for k := range fields[0] {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			sb.WriteByte(' ')
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(logfmtValue(fmt.Sprint(fields[0][k])))
		}
	}
	sb.WriteByte('\n')

	l.mu.Lock()
	defer l.mu.Unlock()
	_, _ = io.WriteString(l.w, sb.String())
}

// logfmtValue quotes values that would otherwise break key=value parsing.
func logfmtValue(v string) string {
	if v == "" || strings.ContainsAny(v, " =\"\t\n") {
		return strconv.Quote(v)
	}
	return v
}

func (l *StdLogger) Debug(_ context.Context, msg string, fields ...ports.Fields) {
	l.log(LevelDebug, msg, nil, fields...)
}

func (l *StdLogger) Info(_ context.Context, msg string, fields ...ports.Fields) {
	l.log(LevelInfo, msg, nil, fields...)
}

func (l *StdLogger) Warn(_ context.Context, msg string, fields ...ports.Fields) {
	l.log(LevelWarn, msg, nil, fields...)
}

func (l *StdLogger) Error(_ context.Context, err error, msg string, fields ...ports.Fields) {
	l.log(LevelError, msg, err, fields...)
}

// Sync is a no-op; every entry is written through immediately.
func (l *StdLogger) Sync() error { return nil }
