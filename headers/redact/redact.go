// headers/redact/redact.go
package redact

import "net/http"

// sensitiveKeys lists header and field names whose values never reach the logs when
// redaction is enabled. Keys are canonicalised before lookup.
var sensitiveKeys = map[string]bool{
	"Authorization":       true,
	"Proxy-Authorization": true,
	"Accesstoken":         true,
	"Refreshtoken":        true,
	"Cookie":              true,
	"Set-Cookie":          true,
}

// RedactSensitiveHeaderData redacts sensitive data based on the hideSensitiveData flag.
func RedactSensitiveHeaderData(hideSensitiveData bool, key, value string) string {
	if hideSensitiveData && sensitiveKeys[http.CanonicalHeaderKey(key)] {
		return "REDACTED"
	}
	return value
}

// RedactHeaders returns a copy of headers with sensitive values replaced.
func RedactHeaders(hideSensitiveData bool, headers http.Header) http.Header {
	redacted := make(http.Header, len(headers))
	for name, values := range headers {
		for _, v := range values {
			redacted.Add(name, RedactSensitiveHeaderData(hideSensitiveData, name, v))
		}
	}
	return redacted
}
