// tokenstore/claims.go
package tokenstore

import (
	"errors"
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// AccessClaims is the subset of access token claims the client logs.
type AccessClaims struct {
	Subject   string
	Role      string
	ExpiresAt time.Time
}

// ExpiresIn returns the time left before expiry, or zero when no expiry is set.
func (c AccessClaims) ExpiresIn(now time.Time) time.Duration {
	if c.ExpiresAt.IsZero() {
		return 0
	}
	return c.ExpiresAt.Sub(now)
}

type accessTokenClaims struct {
	Role string `json:"role"`
	jwt.RegisteredClaims
}

// Claims decodes the access token of pair without verifying its signature. The server
// remains the only authority on validity; this is for diagnostics.
func Claims(pair *TokenPair) (AccessClaims, error) {
	if pair == nil || pair.AccessToken == "" {
		return AccessClaims{}, errors.New("no access token")
	}
	var claims accessTokenClaims
	if _, _, err := jwt.NewParser().ParseUnverified(pair.AccessToken, &claims); err != nil {
		return AccessClaims{}, err
	}
	out := AccessClaims{Subject: claims.Subject, Role: claims.Role}
	if claims.ExpiresAt != nil {
		out.ExpiresAt = claims.ExpiresAt.Time
	}
	return out, nil
}
