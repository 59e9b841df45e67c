// redirecthandler/redirecthandler.go
// Package redirecthandler decides which redirects the API client follows.
package redirecthandler

import (
	"fmt"
	"net/http"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"go.uber.org/zap"
)

// RedirectHandler contains configurations for handling HTTP redirects.
type RedirectHandler struct {
	Logger           logger.Logger
	MaxRedirects     int      // Maximum allowed redirects to prevent infinite loops.
	SensitiveHeaders []string // Headers to be removed on cross-host redirects.
}

// NewRedirectHandler creates a new instance of RedirectHandler.
func NewRedirectHandler(log logger.Logger, maxRedirects int) *RedirectHandler {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &RedirectHandler{
		Logger:           log,
		MaxRedirects:     maxRedirects,
		SensitiveHeaders: []string{"Authorization", "Cookie"},
	}
}

// AddSensitiveHeader allows adding configurable sensitive headers.
func (r *RedirectHandler) AddSensitiveHeader(header string) {
	r.SensitiveHeaders = append(r.SensitiveHeaders, header)
}

// WithRedirectHandling applies the redirect handling policy to an http.Client.
func (r *RedirectHandler) WithRedirectHandling(client *http.Client) {
	client.CheckRedirect = r.checkRedirect
}

// checkRedirect is installed as http.Client.CheckRedirect. req is the request about to
// be sent to the new location and via holds the requests made so far, oldest first.
func (r *RedirectHandler) checkRedirect(req *http.Request, via []*http.Request) error {
	if len(via) == 0 {
		return nil
	}
	original := via[0]

	// Replaying a non-idempotent body elsewhere is never what the caller meant.
	if original.Method == http.MethodPost || original.Method == http.MethodPatch {
		r.Logger.Warn("Redirect attempted on non-idempotent method, not following",
			zap.String("method", original.Method),
			zap.String("url", original.URL.String()),
		)
		return http.ErrUseLastResponse
	}

	if len(via) >= r.MaxRedirects {
		r.Logger.Warn("Maximum redirects reached", zap.Int("maxRedirects", r.MaxRedirects))
		return &MaxRedirectsError{MaxRedirects: r.MaxRedirects}
	}

	for _, prev := range via {
		if prev.URL.String() == req.URL.String() {
			r.Logger.Warn("Redirect loop detected", zap.String("url", req.URL.String()))
			return &RedirectLoopError{URL: req.URL.String()}
		}
	}

	previous := via[len(via)-1]
	if req.URL.Host != previous.URL.Host {
		r.secureRequest(req)
	}

	r.Logger.Info("Redirecting request",
		zap.String("originalURL", previous.URL.String()),
		zap.String("newURL", req.URL.String()),
		zap.Int("redirectCount", len(via)),
	)
	return nil
}

// secureRequest removes sensitive headers from the request if the new destination is a different host.
func (r *RedirectHandler) secureRequest(req *http.Request) {
	for _, header := range r.SensitiveHeaders {
		req.Header.Del(header)
	}
}

// RedirectLoopError represents an error when a redirect loop is detected.
type RedirectLoopError struct {
	URL string
}

func (e *RedirectLoopError) Error() string {
	return fmt.Sprintf("redirect loop detected at %s", e.URL)
}

// MaxRedirectsError represents an error when the maximum number of redirects is reached.
type MaxRedirectsError struct {
	MaxRedirects int
}

func (e *MaxRedirectsError) Error() string {
	return fmt.Sprintf("maximum redirects reached: %d", e.MaxRedirects)
}

// SetupRedirectHandler configures the HTTP client for redirect handling. When
// followRedirects is false every redirect response is returned to the caller as is.
func SetupRedirectHandler(client *http.Client, followRedirects bool, maxRedirects int, log logger.Logger) error {
	if !followRedirects {
		client.CheckRedirect = func(*http.Request, []*http.Request) error {
			return http.ErrUseLastResponse
		}
		return nil
	}
	if maxRedirects < 1 {
		return fmt.Errorf("invalid maxRedirects value: %d", maxRedirects)
	}

	NewRedirectHandler(log, maxRedirects).WithRedirectHandling(client)
	if log != nil {
		log.Info("Redirect handling enabled", zap.Int("MaxRedirects", maxRedirects))
	}
	return nil
}
