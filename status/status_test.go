// status/status_test.go
package status

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsSuccess(t *testing.T) {
	assert.True(t, IsSuccess(http.StatusOK))
	assert.True(t, IsSuccess(http.StatusNoContent))
	assert.False(t, IsSuccess(http.StatusFound))
	assert.False(t, IsSuccess(http.StatusUnauthorized))
}

func TestIsUnauthorized(t *testing.T) {
	assert.True(t, IsUnauthorized(&http.Response{StatusCode: http.StatusUnauthorized}))
	assert.False(t, IsUnauthorized(&http.Response{StatusCode: http.StatusForbidden}))
	assert.False(t, IsUnauthorized(nil))
}

func TestRedirectClassification(t *testing.T) {
	for _, code := range []int{301, 302, 303, 307, 308} {
		assert.True(t, IsRedirectStatusCode(code), code)
	}
	assert.False(t, IsRedirectStatusCode(304))
	assert.True(t, IsPermanentRedirect(301))
	assert.True(t, IsPermanentRedirect(308))
	assert.False(t, IsPermanentRedirect(302))
}

func TestTranslateStatusCode(t *testing.T) {
	tests := []struct {
		name     string
		resp     *http.Response
		expected string
	}{
		{"server status line", &http.Response{StatusCode: 418, Status: "418 Custom Teapot"}, "Custom Teapot"},
		{"canonical fallback", &http.Response{StatusCode: 404}, "Not Found"},
		{"unknown code", &http.Response{StatusCode: 599}, "HTTP 599"},
		{"nil response", nil, ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, TranslateStatusCode(tt.resp))
		})
	}
}
