// response/error_test.go
package response

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/deploymenttheory/go-api-rx-client/mocklogger"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func TestHandleAPIErrorResponse(t *testing.T) {
	tests := []struct {
		name            string
		status          int
		contentType     string
		body            string
		expectedMessage string
		expectedDetails []string
	}{
		{
			name:            "json message",
			status:          http.StatusBadRequest,
			contentType:     "application/json",
			body:            `{"message":"Email already exists","statusCode":400}`,
			expectedMessage: "Email already exists",
		},
		{
			name:            "json message list",
			status:          http.StatusBadRequest,
			contentType:     "application/json",
			body:            `{"message":["email must be an email","password too short"]}`,
			expectedMessage: "email must be an email; password too short",
			expectedDetails: []string{"email must be an email", "password too short"},
		},
		{
			name:            "json without message",
			status:          http.StatusInternalServerError,
			contentType:     "application/json",
			body:            `{"error":"boom"}`,
			expectedMessage: DefaultErrorMessage,
		},
		{
			name:            "non-json falls back to status text",
			status:          http.StatusBadGateway,
			contentType:     "text/plain",
			body:            "upstream unavailable",
			expectedMessage: "Bad Gateway",
			expectedDetails: []string{"upstream unavailable"},
		},
		{
			name:            "html page",
			status:          http.StatusServiceUnavailable,
			contentType:     "text/html; charset=utf-8",
			body:            `<html><body><p>Down for maintenance <a href="/status">status</a></p></body></html>`,
			expectedMessage: "Service Unavailable",
			expectedDetails: []string{"Down for maintenance [Link: /status] status"},
		},
		{
			name:            "xml body",
			status:          http.StatusForbidden,
			contentType:     "application/xml",
			body:            `<error><code>403</code><reason>denied</reason></error>`,
			expectedMessage: "Forbidden",
			expectedDetails: []string{"403", "denied"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := newResponse(tt.status, tt.contentType, tt.body)
			resp.Status = fmt.Sprintf("%d %s", tt.status, http.StatusText(tt.status))

			mockLog := mocklogger.NewMockLogger()
			mockLog.On("LogError", "request_error", http.MethodGet, "http://api.test/resource", tt.status,
				tt.expectedMessage, mock.Anything, tt.body).Once()

			apiErr := HandleAPIErrorResponse(resp, mockLog)

			assert.Equal(t, tt.status, apiErr.HTTPStatus)
			assert.Equal(t, tt.expectedMessage, apiErr.Message)
			assert.Equal(t, tt.expectedDetails, apiErr.Details)
			assert.Equal(t, tt.body, apiErr.RawResponse)
			mockLog.AssertExpectations(t)
		})
	}
}

func TestAPIErrorHelpers(t *testing.T) {
	err := fmt.Errorf("loading profile: %w", &APIError{HTTPStatus: http.StatusUnauthorized, Message: "Unauthorized"})

	assert.True(t, IsUnauthorized(err))
	assert.Equal(t, http.StatusUnauthorized, StatusCode(err))
	assert.Equal(t, 0, StatusCode(errors.New("dial tcp: refused")))
	assert.Equal(t, "api error: status 401: Unauthorized", errors.Unwrap(err).Error())
}
