// httpclient/refresh.go
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/deploymenttheory/go-api-rx-client/metrics"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"github.com/deploymenttheory/go-api-rx-client/status"
	"github.com/deploymenttheory/go-api-rx-client/tokenstore"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

const refreshFlightKey = "refresh"

var errNoRefreshToken = errors.New("no refresh token stored")

// refreshRequest is the body of the refresh call.
type refreshRequest struct {
	RefreshToken string `json:"refreshToken"`
}

// Refresh exchanges the stored refresh token for a new credential pair.
//
// Concurrent callers share a single in-flight exchange. The exchange itself is not
// cancelled when one caller's context is; ctx only bounds how long this caller waits.
// On any failure the token store is cleared, the session-end hook fires once and the
// returned error wraps response.ErrSessionExpired.
func (c *Client) Refresh(ctx context.Context) error {
	ch := c.refreshGroup.DoChan(refreshFlightKey, func() (any, error) {
		return nil, c.refreshTokens(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return ctx.Err()
	case result := <-ch:
		if result.Shared {
			c.Logger.Debug("Joined in-flight credential refresh")
		}
		return result.Err
	}
}

func (c *Client) refreshTokens(ctx context.Context) error {
	url := c.resolveURL(c.config.RefreshEndpoint)

	pair := c.tokens.GetTokens(ctx)
	if pair == nil {
		return c.refreshFailed(ctx, url, 0, errNoRefreshToken)
	}

	payload, err := json.Marshal(refreshRequest{RefreshToken: pair.RefreshToken})
	if err != nil {
		return c.refreshFailed(ctx, url, 0, err)
	}

	resp, err := c.doRequest(ctx, http.MethodPost, c.config.RefreshEndpoint, payload, nil, "")
	if err != nil {
		return c.refreshFailed(ctx, url, 0, err)
	}

	if !status.IsSuccess(resp.StatusCode) {
		apiErr := response.HandleAPIErrorResponse(resp, c.Logger)
		return c.refreshFailed(ctx, url, resp.StatusCode, apiErr)
	}

	result, err := response.HandleAPISuccessResponse(resp, c.unwrapper, c.Logger)
	if err != nil {
		return c.refreshFailed(ctx, url, resp.StatusCode, err)
	}

	var next tokenstore.TokenPair
	if err := result.Decode(&next); err != nil {
		return c.refreshFailed(ctx, url, resp.StatusCode, err)
	}
	if !next.Valid() {
		return c.refreshFailed(ctx, url, resp.StatusCode, errors.New("refresh response is missing tokens"))
	}

	if err := c.tokens.SetTokens(ctx, &next); err != nil {
		// The mirror holds the new pair; this process keeps working.
		c.Logger.Warn("Refreshed credentials could not be persisted", zap.Error(err))
	}

	c.Metrics.IncRefresh(metrics.RefreshSuccess)
	c.logTokenExpiry(&next)
	return nil
}

func (c *Client) refreshFailed(ctx context.Context, url string, statusCode int, cause error) error {
	c.Metrics.IncRefresh(metrics.RefreshFailure)
	c.Logger.LogAuthTokenError("token_refresh", http.MethodPost, url, statusCode, cause)
	c.EndSession(ctx, SessionExpired)
	return fmt.Errorf("%w: %w", response.ErrSessionExpired, cause)
}

// logTokenExpiry logs when the new access token expires. Tokens that are not JWTs are
// only noted at debug level.
func (c *Client) logTokenExpiry(pair *tokenstore.TokenPair) {
	claims, err := tokenstore.Claims(pair)
	if err != nil {
		c.Logger.Debug("Access token is not an inspectable JWT", zap.Error(err))
		return
	}
	c.Logger.Info("Credentials refreshed",
		zap.String("subject", claims.Subject),
		zap.String("role", claims.Role),
		zap.Duration("expires_in", claims.ExpiresIn(time.Now())),
	)
}
