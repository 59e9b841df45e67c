// httpclient/request.go
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/headers"
	"github.com/deploymenttheory/go-api-rx-client/headers/redact"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"github.com/deploymenttheory/go-api-rx-client/status"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// RequestOptions describes a single API call.
type RequestOptions struct {
	// Method defaults to GET.
	Method string
	// Body may be nil, []byte, string, io.Reader or any value encodable as JSON. Readers
	// are buffered so the request can be replayed after a refresh.
	Body any
	// Headers are merged over the JSON defaults. The bearer credential always wins.
	Headers map[string]string
	// SkipAuth sends no bearer and disables the refresh-and-retry path. Used by the
	// login endpoint.
	SkipAuth bool
}

// Call performs an authenticated request against endpoint.
//
// A 401 on a call that carries auth triggers one credential refresh and one replay of
// the request. A failed refresh clears the token store, fires the session-end hook and
// returns an error wrapping response.ErrSessionExpired. Any other non-2xx status is
// returned as a *response.APIError. Transport failures are returned as is and never
// retried.
func (c *Client) Call(ctx context.Context, endpoint string, opts RequestOptions) (*response.Result, error) {
	method := opts.Method
	if method == "" {
		method = http.MethodGet
	}

	payload, err := encodeBody(opts.Body)
	if err != nil {
		return nil, c.Logger.Error("Failed to encode request body", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
	}

	token := ""
	if !opts.SkipAuth {
		if pair := c.tokens.GetTokens(ctx); pair != nil {
			token = pair.AccessToken
		}
	}

	resp, err := c.doRequest(ctx, method, endpoint, payload, opts.Headers, token)
	if err != nil {
		return nil, err
	}

	if opts.SkipAuth || !status.IsUnauthorized(resp) {
		return c.handleResponse(resp)
	}

	drainAndClose(resp)

	retryToken, err := c.tokenForRetry(ctx, token)
	if err != nil {
		return nil, err
	}

	c.Metrics.IncRetry()
	c.Logger.LogRetryAttempt("auth_retry", method, c.resolveURL(endpoint), 1, "credentials refreshed after 401", nil)

	resp, err = c.doRequest(ctx, method, endpoint, payload, opts.Headers, retryToken)
	if err != nil {
		return nil, err
	}
	return c.handleResponse(resp)
}

// tokenForRetry returns the access token to replay with after a 401 sent with
// rejected. When another call has already rotated the pair the new token is used
// without refreshing again.
func (c *Client) tokenForRetry(ctx context.Context, rejected string) (string, error) {
	if pair := c.tokens.GetTokens(ctx); pair != nil && rejected != "" && pair.AccessToken != rejected {
		c.Logger.Debug("Credentials already rotated, replaying without refresh")
		return pair.AccessToken, nil
	}

	if err := c.Refresh(ctx); err != nil {
		return "", err
	}

	pair := c.tokens.GetTokens(ctx)
	if pair == nil {
		return "", fmt.Errorf("%w: credentials missing after refresh", response.ErrSessionExpired)
	}
	return pair.AccessToken, nil
}

// DoRequest performs Call and decodes the unwrapped JSON payload into out. A nil out
// only checks for errors. Non-JSON responses are closed and reported as
// response.ErrRawResponse when out is not nil.
func (c *Client) DoRequest(ctx context.Context, method, endpoint string, body, out any) (*response.Result, error) {
	result, err := c.Call(ctx, endpoint, RequestOptions{Method: method, Body: body})
	if err != nil {
		return nil, err
	}
	if out == nil {
		if result.Shape == response.ShapeRaw {
			result.Response.Body.Close()
		}
		return result, nil
	}
	if result.Shape == response.ShapeRaw {
		result.Response.Body.Close()
		return result, response.ErrRawResponse
	}
	if err := result.Decode(out); err != nil {
		return result, c.Logger.Error("Failed to decode response", zap.String("method", method), zap.String("endpoint", endpoint), zap.Error(err))
	}
	return result, nil
}

// Do performs a request and decodes the payload into a T.
func Do[T any](ctx context.Context, c *Client, method, endpoint string, body any) (T, error) {
	var out T
	_, err := c.DoRequest(ctx, method, endpoint, body, &out)
	return out, err
}

// doRequest sends one HTTP exchange. A concurrency permit is held only for the
// duration of the exchange so refreshes never wait behind the requests that need them.
func (c *Client) doRequest(ctx context.Context, method, endpoint string, payload []byte, overrides map[string]string, token string) (*http.Response, error) {
	log := c.Logger
	url := c.resolveURL(endpoint)

	ctx, requestID, err := c.Concurrency.AcquireConcurrencyToken(ctx)
	if err != nil {
		log.Warn("Failed to acquire concurrency token", zap.String("method", method), zap.String("url", url), zap.Error(err))
		return nil, fmt.Errorf("acquiring concurrency token: %w", err)
	}
	defer c.Concurrency.ReleaseConcurrencyToken(requestID)

	c.Metrics.InFlightInc()
	defer c.Metrics.InFlightDec()

	var bodyReader io.Reader
	if payload != nil {
		bodyReader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return nil, log.Error("Failed to create HTTP request", zap.String("method", method), zap.String("url", url), zap.Error(err))
	}

	headerHandler := headers.NewHeaderHandler(req, log)
	headerHandler.SetUserAgent(c.userAgent())
	headerHandler.SetRequestHeaders(overrides, token)
	headerHandler.LogHeaders(c.config.HideSensitiveData)

	log.LogRequestStart("api_request", requestID.String(), method, url, redact.RedactHeaders(c.config.HideSensitiveData, req.Header))

	startTime := time.Now()
	resp, err := c.httpClient().Do(req)
	duration := time.Since(startTime)
	if err != nil {
		c.Metrics.ObserveRequest(method, 0, duration)
		log.LogError("request_transport_error", method, url, 0, "", err, "")
		return nil, fmt.Errorf("%s %s: %w", method, url, err)
	}

	c.Metrics.ObserveRequest(method, resp.StatusCode, duration)
	log.LogRequestEnd("api_request", method, url, resp.StatusCode, duration)
	headers.CheckDeprecationHeader(resp, log)

	return resp, nil
}

func (c *Client) handleResponse(resp *http.Response) (*response.Result, error) {
	if !status.IsSuccess(resp.StatusCode) {
		return nil, response.HandleAPIErrorResponse(resp, c.Logger)
	}
	return response.HandleAPISuccessResponse(resp, c.unwrapper, c.Logger)
}

// encodeBody turns a request body into replayable bytes.
func encodeBody(body any) ([]byte, error) {
	switch b := body.(type) {
	case nil:
		return nil, nil
	case []byte:
		return b, nil
	case string:
		return []byte(b), nil
	case io.Reader:
		return io.ReadAll(b)
	default:
		return json.Marshal(b)
	}
}

func drainAndClose(resp *http.Response) {
	if resp == nil || resp.Body == nil {
		return
	}
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 64<<10))
	resp.Body.Close()
}
