package rxapi

import (
	"context"
	"net/http"

	"github.com/deploymenttheory/go-api-rx-client/httpclient"
	"github.com/deploymenttheory/go-api-rx-client/response"
	"github.com/deploymenttheory/go-api-rx-client/tokenstore"
	"github.com/goccy/go-json"
	"go.uber.org/zap"
)

// AuthService signs users in and out.
type AuthService struct{ *base }

// Login exchanges credentials for a token pair. The login call carries no bearer and
// a 401 here is a plain *response.APIError, not a refresh.
//
// Servers wrap the payload in up to three "data" layers; tokens are taken from the
// outermost layer that holds both. The pair is stored only when both tokens are
// present, and the session profile is set from the returned user.
func (s *AuthService) Login(ctx context.Context, creds LoginCredentials) (*LoginResponse, error) {
	if err := validated(creds); err != nil {
		return nil, err
	}

	result, err := s.client.Call(ctx, LoginEndpoint, httpclient.RequestOptions{
		Method:   http.MethodPost,
		Body:     creds,
		SkipAuth: true,
	})
	if err != nil {
		return nil, err
	}

	login, err := extractLogin(result)
	if err != nil {
		return nil, s.log.Error("Failed to read login response", zap.Error(err))
	}

	pair := &tokenstore.TokenPair{AccessToken: login.AccessToken, RefreshToken: login.RefreshToken}
	if pair.Valid() {
		if err := s.client.Tokens().SetTokens(ctx, pair); err != nil {
			s.log.Warn("Credentials kept in memory only", zap.Error(err))
		}
	} else {
		s.log.Warn("Login response did not carry a credential pair; nothing stored")
	}

	if login.User != nil {
		profile := AuthProfile(*login.User)
		s.session.SetUser(&profile)
		s.log.Info("Signed in", zap.String("user_id", profile.ID), zap.String("role", string(profile.Role)))
	}
	return login, nil
}

// Profile fetches the authenticated user and records it in the session.
func (s *AuthService) Profile(ctx context.Context) (*AuthProfile, error) {
	var profile AuthProfile
	if err := s.do(ctx, http.MethodGet, ProfileEndpoint, nil, &profile); err != nil {
		return nil, err
	}
	s.session.SetUser(&profile)
	return &profile, nil
}

// Logout tells the server to drop the session, then always clears the local
// credentials and profile. A failed server call is logged and otherwise ignored.
func (s *AuthService) Logout(ctx context.Context) {
	if s.client.Tokens().GetTokens(ctx) != nil {
		if _, err := s.client.DoRequest(ctx, http.MethodPost, LogoutEndpoint, nil, nil); err != nil {
			s.log.Warn("Logout request failed; clearing local session anyway", zap.Error(err))
		}
	}
	s.client.EndSession(ctx, httpclient.LoggedOut)
	s.session.Clear()
}

// RefreshTokens rotates the stored credential pair now instead of waiting for a 401.
func (s *AuthService) RefreshTokens(ctx context.Context) error {
	return s.check(s.client.Refresh(ctx))
}

// loginLayerDepth is how many extra "data" layers extractLogin looks through after
// the client's own unwrapping.
const loginLayerDepth = 2

func extractLogin(result *response.Result) (*LoginResponse, error) {
	login := &LoginResponse{}

	layer, ok := result.Value.(map[string]any)
	for depth := 0; ok && depth <= loginLayerDepth; depth++ {
		if login.AccessToken == "" || login.RefreshToken == "" {
			at, _ := layer[tokenstore.AccessTokenKey].(string)
			rt, _ := layer[tokenstore.RefreshTokenKey].(string)
			if at != "" && rt != "" {
				login.AccessToken, login.RefreshToken = at, rt
			}
		}
		if login.User == nil {
			if raw, found := layer["user"].(map[string]any); found {
				user, err := decodeUser(raw)
				if err != nil {
					return nil, err
				}
				login.User = user
			}
		}
		layer, ok = layer["data"].(map[string]any)
	}
	return login, nil
}

func decodeUser(raw map[string]any) (*User, error) {
	data, err := json.Marshal(raw)
	if err != nil {
		return nil, err
	}
	var user User
	if err := json.Unmarshal(data, &user); err != nil {
		return nil, err
	}
	return &user, nil
}
