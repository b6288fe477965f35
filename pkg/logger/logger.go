// Package logger wraps zap with the defaults used across the service.
package logger

import (
	"os"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Logger is a wrapper around zap.Logger.
type Logger struct {
	*zap.Logger
}

// New creates a JSON logger writing to stdout at the given level.
func New(level string) (*Logger, error) {
	cfg := zap.Config{
		Level:    zap.NewAtomicLevelAt(ParseLevel(level)),
		Encoding: "json",
		EncoderConfig: zapcore.EncoderConfig{
			TimeKey:        "timestamp",
			LevelKey:       "level",
			NameKey:        "logger",
			CallerKey:      "caller",
			MessageKey:     "message",
			StacktraceKey:  "stacktrace",
			LineEnding:     zapcore.DefaultLineEnding,
			EncodeLevel:    zapcore.LowercaseLevelEncoder,
			EncodeTime:     zapcore.ISO8601TimeEncoder,
			EncodeDuration: zapcore.MillisDurationEncoder,
			EncodeCaller:   zapcore.ShortCallerEncoder,
		},
		OutputPaths:      []string{"stdout"},
		ErrorOutputPaths: []string{"stderr"},
	}

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: zl}, nil
}

// NewDevelopment creates a console logger with colored levels.
func NewDevelopment(level string) (*Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(ParseLevel(level))
	cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder

	zl, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return &Logger{Logger: zl}, nil
}

// NewNop returns a logger that discards everything.
func NewNop() *Logger {
	return &Logger{Logger: zap.NewNop()}
}

// With creates a child logger with additional fields.
func (l *Logger) With(fields ...zap.Field) *Logger {
	return &Logger{Logger: l.Logger.With(fields...)}
}

// WithRequest creates a child logger carrying request scoped identifiers.
// Empty values are skipped.
func (l *Logger) WithRequest(correlationID, threadID, userID string) *Logger {
	fields := make([]zap.Field, 0, 3)
	if correlationID != "" {
		fields = append(fields, zap.String("correlation_id", correlationID))
	}
	if threadID != "" {
		fields = append(fields, zap.String("thread_id", threadID))
	}
	if userID != "" {
		fields = append(fields, zap.String("user_id", userID))
	}
	return l.With(fields...)
}

// ParseLevel maps a level name to a zap level. Unknown names map to info.
func ParseLevel(level string) zapcore.Level {
	switch strings.ToLower(level) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	case "fatal":
		return zapcore.FatalLevel
	default:
		return zapcore.InfoLevel
	}
}

var (
	globalMu sync.RWMutex
	global   *Logger
)

func init() {
	var err error
	if os.Getenv("ENV") == "development" {
		global, err = NewDevelopment("debug")
	} else {
		global, err = New("info")
	}
	if err != nil {
		global = NewNop()
	}
}

// Global returns the global logger instance.
func Global() *Logger {
	globalMu.RLock()
	defer globalMu.RUnlock()
	return global
}

// SetGlobal sets the global logger instance.
func SetGlobal(l *Logger) {
	globalMu.Lock()
	global = l
	globalMu.Unlock()
}
