// proxy.go

// Package proxy routes the API client's traffic through an outbound HTTP proxy.
package proxy

import (
	"encoding/base64"
	"fmt"
	"net/http"
	"net/url"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"go.uber.org/zap"
)

// Config describes the outbound proxy. An empty URL means a direct connection.
type Config struct {
	URL      string
	Username string
	Password string
}

// InitializeProxy installs a proxying transport on httpClient. Credentials, when both
// are given, are sent as Basic Proxy-Authorization on every proxied request and CONNECT.
func InitializeProxy(httpClient *http.Client, config Config, log logger.Logger) error {
	if config.URL == "" {
		return nil
	}

	proxyURL, err := url.Parse(config.URL)
	if err != nil {
		return log.Error("Failed to parse proxy URL", zap.Error(err))
	}
	if proxyURL.Scheme == "" || proxyURL.Host == "" {
		return fmt.Errorf("proxy url %q must include a scheme and host", config.URL)
	}

	transport := http.DefaultTransport.(*http.Transport).Clone()
	transport.Proxy = http.ProxyURL(proxyURL)

	if config.Username != "" && config.Password != "" {
		proxyURL.User = url.UserPassword(config.Username, config.Password)
		auth := "Basic " + base64.StdEncoding.EncodeToString([]byte(config.Username+":"+config.Password))
		transport.ProxyConnectHeader = http.Header{"Proxy-Authorization": []string{auth}}
	}

	httpClient.Transport = transport

	log.Info("Proxy configured", zap.String("proxy_host", proxyURL.Host), zap.Bool("authenticated", proxyURL.User != nil))
	return nil
}
