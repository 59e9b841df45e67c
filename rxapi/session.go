package rxapi

import (
	"sync"

	"github.com/deploymenttheory/go-api-rx-client/httpclient"
)

// Session holds the profile of the signed-in user. It is safe for concurrent use.
//
// Hand HandleSessionEnd to httpclient.ClientConfig.OnSessionEnd so the profile is
// dropped as soon as the client gives up on the credentials.
type Session struct {
	mu   sync.RWMutex
	user *AuthProfile
}

func NewSession() *Session {
	return &Session{}
}

// User returns a copy of the current profile, or nil when nobody is signed in.
func (s *Session) User() *AuthProfile {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.user == nil {
		return nil
	}
	u := *s.user
	return &u
}

func (s *Session) SetUser(user *AuthProfile) {
	var stored *AuthProfile
	if user != nil {
		u := *user
		stored = &u
	}
	s.mu.Lock()
	s.user = stored
	s.mu.Unlock()
}

func (s *Session) Clear() {
	s.SetUser(nil)
}

func (s *Session) IsAuthenticated() bool {
	return IsAuthenticated(s.User())
}

func (s *Session) HasRole(role Role) bool {
	return HasRole(s.User(), role)
}

// HandleSessionEnd clears the profile for any session-end reason.
func (s *Session) HandleSessionEnd(httpclient.SessionEndReason) {
	s.Clear()
}
