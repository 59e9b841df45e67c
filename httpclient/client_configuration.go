// httpclient/client_configuration.go
// Description: This file contains functions to load and validate client configuration values from the environment.
package httpclient

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

const (
	EnvPrefix                        = "RXCLIENT"
	DefaultBaseURL                   = "http://localhost:4001"
	DefaultRefreshEndpoint           = "/auth/refresh"
	DefaultLogLevelString            = "LogLevelInfo"
	DefaultLogOutputFormatString     = logger.LogOutputJSON
	DefaultMaxConcurrentRequests     = 5
	DefaultConcurrencyAcquireTimeout = 10 * time.Second
	DefaultCustomTimeout             = 30 * time.Second
	DefaultFollowRedirects           = false
	DefaultMaxRedirects              = 5
)

// LoadConfigFromEnv loads client configuration from RXCLIENT_* environment variables.
// Variables from the given dotenv files (".env" when none are named) are loaded first
// without overriding the real environment; missing files are skipped.
func LoadConfigFromEnv(dotenvFiles ...string) (*ClientConfig, error) {
	if err := godotenv.Load(dotenvFiles...); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("could not load dotenv file: %w", err)
	}

	var config ClientConfig
	if err := envconfig.Process(EnvPrefix, &config); err != nil {
		return nil, fmt.Errorf("could not process environment: %w", err)
	}

	SetDefaultValuesClientConfig(&config)
	return &config, nil
}

func validateClientConfig(config ClientConfig) error {
	if config.BaseURL == "" {
		return errors.New("base url cannot be empty")
	}

	u, err := url.Parse(config.BaseURL)
	if err != nil {
		return fmt.Errorf("base url is not valid: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("base url must use http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("base url must include a host")
	}

	if config.RefreshEndpoint == "" {
		return errors.New("refresh endpoint cannot be empty")
	}

	if config.MaxConcurrentRequests < 1 {
		return errors.New("maximum concurrent requests cannot be less than 1")
	}

	if config.CustomTimeout < 0 {
		return errors.New("timeout cannot be less than 0 seconds")
	}

	if config.FollowRedirects && config.MaxRedirects < 1 {
		return errors.New("max redirects cannot be less than 1")
	}

	return nil
}

// SetDefaultValuesClientConfig sets default values for the client configuration. Ensuring that all fields have a valid or minimum value.
func SetDefaultValuesClientConfig(config *ClientConfig) {
	setDefaultString(&config.BaseURL, DefaultBaseURL)
	setDefaultString(&config.RefreshEndpoint, DefaultRefreshEndpoint)
	setDefaultString(&config.LogLevel, DefaultLogLevelString)
	setDefaultString(&config.LogOutputFormat, DefaultLogOutputFormatString)
	setDefaultInt(&config.MaxConcurrentRequests, DefaultMaxConcurrentRequests, 1)
	setDefaultDuration(&config.ConcurrencyAcquireTimeout, DefaultConcurrencyAcquireTimeout)
	setDefaultDuration(&config.CustomTimeout, DefaultCustomTimeout)
	setDefaultInt(&config.MaxRedirects, DefaultMaxRedirects, 1)
}

func setDefaultString(field *string, defaultValue string) {
	if *field == "" {
		*field = defaultValue
	}
}

func setDefaultInt(field *int, defaultValue, minValue int) {
	if *field < minValue {
		*field = defaultValue
	}
}

func setDefaultDuration(field *time.Duration, defaultValue time.Duration) {
	if *field <= 0 {
		*field = defaultValue
	}
}
