// mocklogger/mocklogger.go
package mocklogger

import (
	"errors"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/stretchr/testify/mock"
	"go.uber.org/zap"
)

// MockLogger is a mock type for the Logger interface.
type MockLogger struct {
	mock.Mock
	logLevel logger.LogLevel
}

// NewMockLogger creates a new instance of MockLogger.
func NewMockLogger() *MockLogger {
	return &MockLogger{logLevel: logger.LogLevelDebug}
}

// Ensure MockLogger implements the logger.Logger interface from the logger package
var _ logger.Logger = (*MockLogger)(nil)

// AllowAll registers optional expectations for every method so tests only have to
// assert on the calls they care about.
func (m *MockLogger) AllowAll() *MockLogger {
	for _, method := range []string{"Debug", "Info", "Warn", "Error", "Panic", "Fatal"} {
		m.On(method, mock.Anything, mock.Anything).Maybe()
	}
	m.On("SetLevel", mock.Anything).Maybe()
	m.On("With", mock.Anything).Maybe()
	m.On("LogRequestStart", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("LogRequestEnd", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("LogError", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("LogAuthTokenError", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	m.On("LogRetryAttempt", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).Maybe()
	return m
}

// GetLogLevel returns the level set through SetLevel.
func (m *MockLogger) GetLogLevel() logger.LogLevel {
	return m.logLevel
}

// SetLevel sets the logging level of the MockLogger.
func (m *MockLogger) SetLevel(level logger.LogLevel) {
	m.logLevel = level
	m.Called(level)
}

// With records the call and returns the same mock so expectations keep applying.
func (m *MockLogger) With(fields ...zap.Field) logger.Logger {
	m.Called(fields)
	return m
}

// Debug logs a message at the Debug level.
func (m *MockLogger) Debug(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Info logs a message at the Info level.
func (m *MockLogger) Info(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Warn logs a message at the Warn level.
func (m *MockLogger) Warn(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Error records the call and returns msg as an error, mirroring the real logger.
func (m *MockLogger) Error(msg string, fields ...zap.Field) error {
	m.Called(msg, fields)
	return errors.New(msg)
}

// Panic logs a message at the Panic level.
func (m *MockLogger) Panic(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// Fatal logs a message at the Fatal level.
func (m *MockLogger) Fatal(msg string, fields ...zap.Field) {
	m.Called(msg, fields)
}

// LogRequestStart logs the start of an HTTP request.
func (m *MockLogger) LogRequestStart(event string, requestID string, method string, url string, headers map[string][]string) {
	m.Called(event, requestID, method, url, headers)
}

// LogRequestEnd logs the end of an HTTP request.
func (m *MockLogger) LogRequestEnd(event string, method string, url string, statusCode int, duration time.Duration) {
	m.Called(event, method, url, statusCode, duration)
}

// LogError logs an error event.
func (m *MockLogger) LogError(event string, method string, url string, statusCode int, serverStatusMessage string, err error, rawResponse string) {
	m.Called(event, method, url, statusCode, serverStatusMessage, err, rawResponse)
}

// LogAuthTokenError logs a token refresh failure.
func (m *MockLogger) LogAuthTokenError(event string, method string, url string, statusCode int, err error) {
	m.Called(event, method, url, statusCode, err)
}

// LogRetryAttempt logs a retry attempt.
func (m *MockLogger) LogRetryAttempt(event string, method string, url string, attempt int, reason string, err error) {
	m.Called(event, method, url, attempt, reason, err)
}
