// logger/logfields.go
package logger

import (
	"time"

	"go.uber.org/zap"
)

// LogRequestStart logs the initiation of an HTTP request, including the HTTP method, URL, and headers.
// Headers are expected to be redacted by the caller.
func (d *defaultLogger) LogRequestStart(event string, requestID string, method string, url string, headers map[string][]string) {
	if d.enabled(LogLevelDebug) {
		d.logger.Debug("HTTP request started",
			zap.String("event", event),
			zap.String("request_id", requestID),
			zap.String("method", method),
			zap.String("url", url),
			zap.Any("headers", headers),
		)
	}
}

// LogRequestEnd logs the completion of an HTTP request, including the HTTP method, URL, status code, and duration.
func (d *defaultLogger) LogRequestEnd(event string, method string, url string, statusCode int, duration time.Duration) {
	if d.enabled(LogLevelInfo) {
		d.logger.Info("HTTP request completed",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
		)
	}
}

// LogError logs an error that occurs during the processing of an HTTP request.
func (d *defaultLogger) LogError(event string, method string, url string, statusCode int, serverStatusMessage string, err error, rawResponse string) {
	if d.enabled(LogLevelError) {
		errorMessage := ""
		if err != nil {
			errorMessage = err.Error()
		}
		d.logger.Error("Error during HTTP request",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.String("status_message", serverStatusMessage),
			zap.String("error_message", errorMessage),
			zap.String("raw_response", rawResponse),
		)
	}
}

// LogAuthTokenError logs issues encountered during the authentication token refresh process.
func (d *defaultLogger) LogAuthTokenError(event string, method string, url string, statusCode int, err error) {
	if d.enabled(LogLevelWarn) {
		errorMessage := ""
		if err != nil {
			errorMessage = err.Error()
		}
		d.logger.Warn("Error obtaining authentication token",
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("status_code", statusCode),
			zap.String("error_message", errorMessage),
		)
	}
}

// LogRetryAttempt logs a retry attempt for an HTTP request.
func (d *defaultLogger) LogRetryAttempt(event string, method string, url string, attempt int, reason string, err error) {
	if d.enabled(LogLevelWarn) {
		fields := []zap.Field{
			zap.String("event", event),
			zap.String("method", method),
			zap.String("url", url),
			zap.Int("attempt", attempt),
			zap.String("reason", reason),
		}
		if err != nil {
			fields = append(fields, zap.Error(err))
		}
		d.logger.Warn("HTTP request retry", fields...)
	}
}
