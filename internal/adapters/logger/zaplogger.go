package logger

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"cryptoWallet/internal/ports"
)

// ZapConfig holds configuration for the zap-backed logger.
type ZapConfig struct {
	// Level is the minimum level logged.
	Level LogLevel
	// Format is the encoder: "json" or "console".
	Format string
	// OutputPaths is a list of paths to write logs to. Defaults to stderr.
	OutputPaths []string
	// EnableCaller adds file:line of the call site.
	EnableCaller bool
}

// ZapLogger implements ports.Logger on top of a zap.Logger.
type ZapLogger struct {
	logger *zap.Logger
}

// NewZapLogger builds a zap logger from cfg.
func NewZapLogger(cfg ZapConfig) (*ZapLogger, error) {
	format := strings.ToLower(cfg.Format)
	if format == "" {
		format = "json"
	}
	if format != "json" && format != "console" {
		return nil, fmt.Errorf("unsupported log format %q (want json or console)", cfg.Format)
	}
	outputs := cfg.OutputPaths
	if len(outputs) == 0 {
		outputs = []string{"stderr"}
	}

	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder

	zapConfig := zap.Config{
		Level:             zap.NewAtomicLevelAt(toZapLevel(cfg.Level)),
		DisableCaller:     !cfg.EnableCaller,
		DisableStacktrace: true,
		Encoding:          format,
		EncoderConfig:     encoderConfig,
		OutputPaths:       outputs,
		ErrorOutputPaths:  []string{"stderr"},
	}

	l, err := zapConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("failed to build zap logger: %w", err)
	}
	return &ZapLogger{logger: l}, nil
}

// NewZapLoggerFrom wraps an existing zap.Logger (tests use zaptest/observer cores).
func NewZapLoggerFrom(l *zap.Logger) *ZapLogger {
	return &ZapLogger{logger: l}
}

func toZapLevel(l LogLevel) zapcore.Level {
	switch l {
	case LevelDebug:
		return zapcore.DebugLevel
	case LevelWarn:
		return zapcore.WarnLevel
	case LevelError:
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}

func toZapFields(fields []ports.Fields) []zap.Field {
	if len(fields) == 0 || len(fields[0]) == 0 {
		return nil
	}
	out := make([]zap.Field, 0, len(fields[0]))
	for k, v := range fields[0] {
		out = append(out, zap.Any(k, v))
	}
	return out
}

// Debug logs a message at Debug level.
func (z *ZapLogger) Debug(_ context.Context, msg string, fields ...ports.Fields) {
	z.logger.Debug(msg, toZapFields(fields)...)
}

// Info logs a message at Info level.
func (z *ZapLogger) Info(_ context.Context, msg string, fields ...ports.Fields) {
	z.logger.Info(msg, toZapFields(fields)...)
}

// Warn logs a message at Warning level.
func (z *ZapLogger) Warn(_ context.Context, msg string, fields ...ports.Fields) {
	z.logger.Warn(msg, toZapFields(fields)...)
}

// Error logs an error message at Error level.
func (z *ZapLogger) Error(_ context.Context, err error, msg string, fields ...ports.Fields) {
	z.logger.Error(msg, append(toZapFields(fields), zap.Error(err))...)
}

// Sync flushes buffered entries.
func (z *ZapLogger) Sync() error {
	return z.logger.Sync()
}

// New picks the adapter for format: "std" (or empty) gives a StdLogger, "json" and
// "console" give a ZapLogger.
func New(format string, level LogLevel) (ports.Logger, error) {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "", "std", "text":
		return NewStdLogger(level), nil
	default:
		return NewZapLogger(ZapConfig{Level: level, Format: format})
	}
}
