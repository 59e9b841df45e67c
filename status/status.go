// status/status.go
// This package provides utility functions for categorizing HTTP status codes.
package status

import (
	"fmt"
	"net/http"
)

// IsSuccess reports whether the status code is in the 2xx range.
func IsSuccess(statusCode int) bool {
	return statusCode >= 200 && statusCode < 300
}

// IsUnauthorized reports whether the response carries a 401, the only status that
// triggers a token refresh.
func IsUnauthorized(resp *http.Response) bool {
	return resp != nil && resp.StatusCode == http.StatusUnauthorized
}

// IsRedirectStatusCode checks if the provided HTTP status code is one of the redirect codes.
//
// - 301 Moved Permanently
// - 302 Found
// - 303 See Other
// - 307 Temporary Redirect
// - 308 Permanent Redirect
func IsRedirectStatusCode(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusFound,
		http.StatusSeeOther,
		http.StatusTemporaryRedirect,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// IsPermanentRedirect checks if the provided HTTP status code is one of the permanent redirect codes.
func IsPermanentRedirect(statusCode int) bool {
	switch statusCode {
	case http.StatusMovedPermanently,
		http.StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// TranslateStatusCode returns the status line text for a response, falling back to the
// canonical text for the code when the server did not send one.
func TranslateStatusCode(resp *http.Response) string {
	if resp == nil {
		return ""
	}
	if text := statusTextFromLine(resp.Status, resp.StatusCode); text != "" {
		return text
	}
	if text := http.StatusText(resp.StatusCode); text != "" {
		return text
	}
	return fmt.Sprintf("HTTP %d", resp.StatusCode)
}

// statusTextFromLine strips the numeric prefix from a status line such as "404 Not Found".
func statusTextFromLine(line string, code int) string {
	prefix := fmt.Sprintf("%d ", code)
	if len(line) > len(prefix) && line[:len(prefix)] == prefix {
		return line[len(prefix):]
	}
	return ""
}
