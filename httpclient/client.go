// httpclient/client.go
/* Package httpclient provides the authenticated API client used by every service call.
It resolves endpoints against a base URL, attaches the bearer credential from the token
store, refreshes the credential pair once when the server answers 401 and replays the
request, and turns responses into tagged results or structured API errors. */
package httpclient

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/concurrency"
	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/deploymenttheory/go-api-rx-client/metrics"
	"github.com/deploymenttheory/go-api-rx-client/proxy"
	"github.com/deploymenttheory/go-api-rx-client/redirecthandler"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"github.com/deploymenttheory/go-api-rx-client/tokenstore"
	"github.com/deploymenttheory/go-api-rx-client/version"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"
)

// SessionEndReason tells the session-end hook why the credentials were dropped.
type SessionEndReason string

const (
	// SessionExpired means a refresh failed; the user has to log in again.
	SessionExpired SessionEndReason = "session_expired"
	// LoggedOut means the user ended the session.
	LoggedOut SessionEndReason = "logged_out"
)

// Client is the authenticated API client. It is safe for concurrent use.
type Client struct {
	// Private
	config       ClientConfig
	http         *http.Client
	baseURL      string
	tokens       *tokenstore.Store
	unwrapper    response.Unwrapper
	onSessionEnd func(SessionEndReason)
	refreshGroup singleflight.Group
	lock         sync.Mutex

	// Exported
	Logger      logger.Logger
	Concurrency *concurrency.ConcurrencyHandler
	Metrics     *metrics.ClientMetrics
}

// ClientConfig holds everything needed to build a Client. Fields tagged ignored are
// only settable from code.
type ClientConfig struct {
	// API
	BaseURL         string `envconfig:"API_BASE_URL" default:"http://localhost:4001"`
	RefreshEndpoint string `envconfig:"REFRESH_ENDPOINT" default:"/auth/refresh"`
	UserAgent       string `envconfig:"USER_AGENT"`

	// Log
	LogLevel          string `envconfig:"LOG_LEVEL" default:"LogLevelInfo"`
	LogOutputFormat   string `envconfig:"LOG_OUTPUT_FORMAT" default:"json"`
	HideSensitiveData bool   `envconfig:"HIDE_SENSITIVE_DATA"`

	// Proxy
	ProxyURL      string `envconfig:"PROXY_URL"`
	ProxyUsername string `envconfig:"PROXY_USERNAME"`
	ProxyPassword string `envconfig:"PROXY_PASSWORD"`

	// Token storage. TokenStore wins over RedisURL, which wins over TokenFile. With none
	// of them set the pair lives in process memory.
	RedisURL    string `envconfig:"REDIS_URL"`
	RedisPrefix string `envconfig:"REDIS_PREFIX"`
	TokenFile   string `envconfig:"TOKEN_FILE"`

	// Misc
	MaxConcurrentRequests     int           `envconfig:"MAX_CONCURRENT_REQUESTS"`
	ConcurrencyAcquireTimeout time.Duration `envconfig:"CONCURRENCY_ACQUIRE_TIMEOUT"`
	CustomTimeout             time.Duration `envconfig:"CUSTOM_TIMEOUT"`
	FollowRedirects           bool          `envconfig:"FOLLOW_REDIRECTS"`
	MaxRedirects              int           `envconfig:"MAX_REDIRECTS"`
	UnwrapDepth               int           `envconfig:"UNWRAP_DEPTH"` // 0 selects the default depth, negative disables unwrapping

	// Code only
	Logger            logger.Logger          `ignored:"true"`
	TokenStore        *tokenstore.Store      `ignored:"true"`
	Unwrapper         response.Unwrapper     `ignored:"true"`
	OnSessionEnd      func(SessionEndReason) `ignored:"true"`
	MetricsRegisterer prometheus.Registerer  `ignored:"true"`
}

// BuildClient creates a new HTTP client with the provided configuration.
func BuildClient(config ClientConfig, populateDefaultValues bool) (*Client, error) {
	if populateDefaultValues {
		SetDefaultValuesClientConfig(&config)
	}

	if err := validateClientConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	//region Logging

	log := config.Logger
	if log == nil {
		parsedLogLevel := logger.ParseLogLevelFromString(config.LogLevel)
		built, err := logger.BuildLogger(parsedLogLevel, config.LogOutputFormat)
		if err != nil {
			return nil, err
		}
		log = built
	}

	log.Info("initializing new http client", zap.String("base_url", config.BaseURL))

	//endregion

	//region HTTP

	httpClient := &http.Client{
		Timeout: config.CustomTimeout,
	}

	if err := redirecthandler.SetupRedirectHandler(httpClient, config.FollowRedirects, config.MaxRedirects, log); err != nil {
		return nil, log.Error("Failed to set up redirect handler", zap.Error(err))
	}

	proxyConfig := proxy.Config{URL: config.ProxyURL, Username: config.ProxyUsername, Password: config.ProxyPassword}
	if err := proxy.InitializeProxy(httpClient, proxyConfig, log); err != nil {
		return nil, fmt.Errorf("configuring proxy: %w", err)
	}

	//endregion

	//region Tokens

	tokens := config.TokenStore
	if tokens == nil {
		storage, err := buildTokenStorage(config)
		if err != nil {
			return nil, log.Error("Failed to set up token storage", zap.Error(err))
		}
		tokens = tokenstore.New(storage, log)
	}

	unwrapper := config.Unwrapper
	if unwrapper == nil {
		switch {
		case config.UnwrapDepth < 0:
			unwrapper = response.NoUnwrap{}
		case config.UnwrapDepth == 0:
			unwrapper = response.DefaultUnwrapper
		default:
			unwrapper = response.NewDataUnwrapper(config.UnwrapDepth)
		}
	}

	//endregion

	client := &Client{
		config:       config,
		http:         httpClient,
		baseURL:      strings.TrimRight(config.BaseURL, "/"),
		tokens:       tokens,
		unwrapper:    unwrapper,
		onSessionEnd: config.OnSessionEnd,
		Logger:       log,
		Concurrency:  concurrency.NewConcurrencyHandler(config.MaxConcurrentRequests, config.ConcurrencyAcquireTimeout, log),
		Metrics:      metrics.NewClientMetrics(config.MetricsRegisterer),
	}

	log.Debug("New API client initialized",
		zap.String("Base URL", client.baseURL),
		zap.String("Refresh Endpoint", config.RefreshEndpoint),
		zap.String("Logging Level", config.LogLevel),
		zap.String("Log Encoding Format", config.LogOutputFormat),
		zap.Bool("Hide Sensitive Data In Logs", config.HideSensitiveData),
		zap.Int("Max Concurrent Requests", config.MaxConcurrentRequests),
		zap.Bool("Follow Redirects", config.FollowRedirects),
		zap.Int("Max Redirects", config.MaxRedirects),
		zap.Int("Unwrap Depth", config.UnwrapDepth),
		zap.Duration("Custom Timeout", config.CustomTimeout),
	)

	return client, nil
}

func buildTokenStorage(config ClientConfig) (tokenstore.Storage, error) {
	switch {
	case config.RedisURL != "":
		return tokenstore.NewRedisStorageFromURL(config.RedisURL, config.RedisPrefix)
	case config.TokenFile != "":
		return tokenstore.NewFileStorage(config.TokenFile), nil
	default:
		return tokenstore.NewMemoryStorage(), nil
	}
}

// Tokens returns the token store the client reads credentials from.
func (c *Client) Tokens() *tokenstore.Store {
	return c.tokens
}

// BaseURL returns the configured API origin without a trailing slash.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// EndSession clears the stored credentials and notifies the session-end hook.
func (c *Client) EndSession(ctx context.Context, reason SessionEndReason) {
	if err := c.tokens.ClearTokens(ctx); err != nil {
		c.Logger.Warn("Failed to clear stored credentials", zap.Error(err))
	}
	c.Logger.Info("Session ended", zap.String("reason", string(reason)))
	if c.onSessionEnd != nil {
		c.onSessionEnd(reason)
	}
}

// resolveURL joins endpoint onto the base URL. Absolute endpoints are used as given.
func (c *Client) resolveURL(endpoint string) string {
	if u, err := url.Parse(endpoint); err == nil && u.IsAbs() {
		return endpoint
	}
	return c.baseURL + "/" + strings.TrimLeft(endpoint, "/")
}

func (c *Client) userAgent() string {
	if c.config.UserAgent != "" {
		return c.config.UserAgent
	}
	return version.GetUserAgentHeader()
}
