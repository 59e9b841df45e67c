// headers/headers.go
package headers

import (
	"fmt"
	"net/http"
	"sort"
	"strings"

	"github.com/deploymenttheory/go-api-rx-client/headers/redact"
	"github.com/deploymenttheory/go-api-rx-client/logger"
	"go.uber.org/zap"
)

const (
	// ContentTypeJSON is the default request content type.
	ContentTypeJSON = "application/json"

	bearerPrefix = "Bearer "
)

// HeaderHandler is responsible for managing and setting headers on HTTP requests.
type HeaderHandler struct {
	req *http.Request // The http.Request for which headers are being managed
	log logger.Logger // The logger to use for logging headers
}

// NewHeaderHandler creates a new instance of HeaderHandler for a given http.Request and logger.
func NewHeaderHandler(req *http.Request, log logger.Logger) *HeaderHandler {
	return &HeaderHandler{
		req: req,
		log: log,
	}
}

// SetRequestHeaders applies the JSON Content-Type and Accept defaults, then the caller
// overrides, then the bearer token when one is supplied. An empty token leaves any
// Authorization header from the overrides untouched.
func (h *HeaderHandler) SetRequestHeaders(overrides map[string]string, token string) {
	h.SetContentType(ContentTypeJSON)
	h.SetAccept(ContentTypeJSON)
	for name, value := range overrides {
		h.req.Header.Set(name, value)
	}
	if token != "" {
		h.SetAuthorization(token)
	}
}

// SetAuthorization sets the Authorization header for the request.
func (h *HeaderHandler) SetAuthorization(token string) {
	SetAuthorizationHeader(h.req, token)
}

// SetContentType sets the Content-Type header for the request.
func (h *HeaderHandler) SetContentType(contentType string) {
	h.req.Header.Set("Content-Type", contentType)
}

// SetAccept sets the Accept header for the request.
func (h *HeaderHandler) SetAccept(acceptHeader string) {
	h.req.Header.Set("Accept", acceptHeader)
}

// SetUserAgent sets the User-Agent header for the request.
func (h *HeaderHandler) SetUserAgent(userAgent string) {
	if userAgent != "" {
		h.req.Header.Set("User-Agent", userAgent)
	}
}

// LogHeaders prints all the current headers in the http.Request at debug level,
// redacting credentials when hideSensitiveData is set.
func (h *HeaderHandler) LogHeaders(hideSensitiveData bool) {
	if h.log == nil || h.log.GetLogLevel() > logger.LogLevelDebug {
		return
	}
	redacted := redact.RedactHeaders(hideSensitiveData, h.req.Header)
	h.log.Debug("HTTP Request Headers", zap.String("Headers", HeadersToString(redacted)))
}

// SetAuthorizationHeader sets a bearer Authorization header, adding the "Bearer " prefix once.
func SetAuthorizationHeader(req *http.Request, token string) {
	if !strings.HasPrefix(token, bearerPrefix) {
		token = bearerPrefix + token
	}
	req.Header.Set("Authorization", token)
}

// HeadersToString converts a http.Header to a string for logging,
// with each header on a new line in a stable order.
func HeadersToString(headers http.Header) string {
	names := make([]string, 0, len(headers))
	for name := range headers {
		names = append(names, name)
	}
	sort.Strings(names)

	headerStrings := make([]string, 0, len(names))
	for _, name := range names {
		headerStrings = append(headerStrings, fmt.Sprintf("%s: %s", name, strings.Join(headers[name], ", ")))
	}
	return strings.Join(headerStrings, "\n")
}

// CheckDeprecationHeader checks the response headers for the Deprecation header and logs a warning if present.
func CheckDeprecationHeader(resp *http.Response, log logger.Logger) {
	deprecationHeader := resp.Header.Get("Deprecation")
	if deprecationHeader == "" || log == nil {
		return
	}
	endpoint := ""
	if resp.Request != nil && resp.Request.URL != nil {
		endpoint = resp.Request.URL.String()
	}
	log.Warn("API endpoint is deprecated",
		zap.String("Date", deprecationHeader),
		zap.String("Endpoint", endpoint),
	)
}
