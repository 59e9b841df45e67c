// logger/logger.go
package logger

import (
	"errors"
	"os"
	"strings"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// LogLevel represents the level of logging. Higher values denote more severe log messages.
type LogLevel int

const (
	// LogLevelDebug is for messages that are useful during software debugging.
	LogLevelDebug LogLevel = -1 // Zap's DEBUG level
	// LogLevelInfo is for informational messages, indicating normal operation.
	LogLevelInfo LogLevel = 0 // Zap's INFO level
	// LogLevelWarn is for messages that highlight potential issues in the system.
	LogLevelWarn LogLevel = 1 // Zap's WARN level
	// LogLevelError is for messages that highlight errors in the application's execution.
	LogLevelError LogLevel = 2 // Zap's ERROR level
	// LogLevelDPanic is for severe error conditions that are actionable in development.
	LogLevelDPanic LogLevel = 3 // Zap's DPANIC level
	// LogLevelPanic is for severe error conditions that should cause the program to panic.
	LogLevelPanic LogLevel = 4 // Zap's PANIC level
	// LogLevelFatal is for errors that require immediate program termination.
	LogLevelFatal LogLevel = 5 // Zap's FATAL level
	// LogLevelNone disables all output.
	LogLevelNone LogLevel = 6
)

// ParseLogLevelFromString takes a string representation of the log level and returns the corresponding LogLevel.
// Both the "LogLevelDebug" style used in client configuration and the short "debug" style used in
// environment variables are accepted.
func ParseLogLevelFromString(levelStr string) LogLevel {
	switch strings.ToLower(strings.TrimPrefix(levelStr, "LogLevel")) {
	case "debug":
		return LogLevelDebug
	case "info":
		return LogLevelInfo
	case "warn", "warning":
		return LogLevelWarn
	case "error":
		return LogLevelError
	case "dpanic":
		return LogLevelDPanic
	case "panic":
		return LogLevelPanic
	case "fatal":
		return LogLevelFatal
	default:
		return LogLevelNone
	}
}

// Logger interface with structured logging capabilities at various levels.
type Logger interface {
	GetLogLevel() LogLevel
	SetLevel(level LogLevel)
	With(fields ...zapcore.Field) Logger
	Debug(msg string, fields ...zapcore.Field)
	Info(msg string, fields ...zapcore.Field)
	Warn(msg string, fields ...zapcore.Field)
	Error(msg string, fields ...zapcore.Field) error
	Panic(msg string, fields ...zapcore.Field)
	Fatal(msg string, fields ...zapcore.Field)

	LogRequestStart(event string, requestID string, method string, url string, headers map[string][]string)
	LogRequestEnd(event string, method string, url string, statusCode int, duration time.Duration)
	LogError(event string, method string, url string, statusCode int, serverStatusMessage string, err error, rawResponse string)
	LogAuthTokenError(event string, method string, url string, statusCode int, err error)
	LogRetryAttempt(event string, method string, url string, attempt int, reason string, err error)
}

// defaultLogger filters by its own LogLevel before handing entries to zap. The level is
// shared with loggers derived through With, so SetLevel on any of them applies to all.
type defaultLogger struct {
	logger *zap.Logger
	level  *atomic.Int32
}

// NewLogger wraps an existing zap.Logger. A nil zap logger yields a no-op logger.
func NewLogger(z *zap.Logger, level LogLevel) Logger {
	if z == nil {
		z = zap.NewNop()
	}
	l := &defaultLogger{logger: z, level: new(atomic.Int32)}
	l.level.Store(int32(level))
	return l
}

// NewNopLogger returns a Logger that discards everything.
func NewNopLogger() Logger {
	return NewLogger(zap.NewNop(), LogLevelNone)
}

func (d *defaultLogger) GetLogLevel() LogLevel {
	return LogLevel(d.level.Load())
}

// SetLevel is safe to call while other goroutines log.
func (d *defaultLogger) SetLevel(level LogLevel) {
	d.level.Store(int32(level))
}

func (d *defaultLogger) enabled(level LogLevel) bool {
	return d.GetLogLevel() <= level
}

func (d *defaultLogger) With(fields ...zapcore.Field) Logger {
	return &defaultLogger{logger: d.logger.With(fields...), level: d.level}
}

func (d *defaultLogger) Debug(msg string, fields ...zapcore.Field) {
	if d.enabled(LogLevelDebug) {
		d.logger.Debug(msg, fields...)
	}
}

func (d *defaultLogger) Info(msg string, fields ...zapcore.Field) {
	if d.enabled(LogLevelInfo) {
		d.logger.Info(msg, fields...)
	}
}

func (d *defaultLogger) Warn(msg string, fields ...zapcore.Field) {
	if d.enabled(LogLevelWarn) {
		d.logger.Warn(msg, fields...)
	}
}

// Error logs msg and returns it as an error so call sites can log and return in one
// statement.
func (d *defaultLogger) Error(msg string, fields ...zapcore.Field) error {
	if d.enabled(LogLevelError) {
		d.logger.Error(msg, fields...)
	}
	return errors.New(msg)
}

// Panic logs and then panics, even when the level filters the entry out.
func (d *defaultLogger) Panic(msg string, fields ...zapcore.Field) {
	if d.enabled(LogLevelPanic) {
		d.logger.Panic(msg, fields...)
	}
	panic(msg)
}

// Fatal logs and then exits the process.
func (d *defaultLogger) Fatal(msg string, fields ...zapcore.Field) {
	if d.enabled(LogLevelFatal) {
		d.logger.Fatal(msg, fields...)
	}
	os.Exit(1)
}
