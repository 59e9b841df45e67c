// tokenstore/tokenstore.go
// Package tokenstore holds the access/refresh credential pair shared by every call
// the API client makes.
package tokenstore

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/deploymenttheory/go-api-rx-client/logger"
	"go.uber.org/zap"
)

// Storage keys for the two halves of the pair.
const (
	AccessTokenKey  = "accessToken"
	RefreshTokenKey = "refreshToken"
)

// ErrNotFound is returned by Storage.Get for a key that has no value.
var ErrNotFound = errors.New("tokenstore: key not found")

// TokenPair is the credential pair issued by the auth endpoints.
type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// Valid reports whether both halves are present.
func (p *TokenPair) Valid() bool {
	return p != nil && p.AccessToken != "" && p.RefreshToken != ""
}

// Storage is a durable key/value backend. Any error other than ErrNotFound means the
// backend is unavailable. SetValues writes all values or none of them.
type Storage interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	SetValues(ctx context.Context, values map[string]string) error
	Delete(ctx context.Context, keys ...string) error
}

// Store is the source of truth for the credential pair. Persistent storage is
// authoritative whenever it is reachable, so pairs written by other processes sharing
// the same backend are observed; an in-memory mirror serves reads otherwise.
//
// After a failed write or clear the mirror is ahead of storage. Until storage has been
// brought back in line, reads serve the mirror and every read retries the sync.
type Store struct {
	storage Storage
	log     logger.Logger

	mu       sync.Mutex
	mirror   *TokenPair
	unsynced bool
}

// New returns a Store over storage. A nil storage keeps the pair in memory only.
func New(storage Storage, log logger.Logger) *Store {
	if log == nil {
		log = logger.NewNopLogger()
	}
	return &Store{storage: storage, log: log}
}

// SetTokens replaces the stored pair. A nil or incomplete pair clears both entries.
// The mirror is always updated; a storage failure is returned to the caller and the
// pair keeps being served from memory.
func (s *Store) SetTokens(ctx context.Context, pair *TokenPair) error {
	if !pair.Valid() {
		return s.ClearTokens(ctx)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.mirror = clone(pair)
	if err := s.sync(ctx); err != nil {
		return s.storageError("write", err)
	}
	return nil
}

// GetTokens returns a copy of the current pair, or nil when there is none.
func (s *Store) GetTokens(ctx context.Context) *TokenPair {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.storage == nil {
		return clone(s.mirror)
	}

	if s.unsynced {
		if err := s.sync(ctx); err != nil {
			s.log.Debug("Token storage still behind in-memory credentials", zap.Error(err))
		}
		return clone(s.mirror)
	}

	pair, err := s.read(ctx)
	if err != nil {
		s.log.Warn("Token storage unavailable, using in-memory credentials", zap.Error(err))
		return clone(s.mirror)
	}
	s.mirror = pair
	return clone(pair)
}

// ClearTokens removes the pair from the mirror and from storage.
func (s *Store) ClearTokens(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.mirror = nil
	if err := s.sync(ctx); err != nil {
		return s.storageError("clear", err)
	}
	return nil
}

// sync writes the mirror to storage, deleting both keys when it is empty. A failure
// leaves the store unsynced. Callers hold s.mu.
func (s *Store) sync(ctx context.Context) error {
	if s.storage == nil {
		return nil
	}

	var err error
	if s.mirror == nil {
		err = s.storage.Delete(ctx, AccessTokenKey, RefreshTokenKey)
	} else {
		err = s.storage.SetValues(ctx, map[string]string{
			AccessTokenKey:  s.mirror.AccessToken,
			RefreshTokenKey: s.mirror.RefreshToken,
		})
	}
	if err != nil {
		s.unsynced = true
		return err
	}
	if s.unsynced {
		s.log.Info("Token storage back in sync with in-memory credentials")
	}
	s.unsynced = false
	return nil
}

// read loads the pair from storage. A missing half yields a nil pair and no error.
func (s *Store) read(ctx context.Context) (*TokenPair, error) {
	access, err := s.storage.Get(ctx, AccessTokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	refresh, err := s.storage.Get(ctx, RefreshTokenKey)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	pair := &TokenPair{AccessToken: access, RefreshToken: refresh}
	if !pair.Valid() {
		return nil, nil
	}
	return pair, nil
}

func (s *Store) storageError(op string, err error) error {
	s.log.Warn("Token storage "+op+" failed", zap.Error(err))
	return fmt.Errorf("tokenstore %s: %w", op, err)
}

func clone(p *TokenPair) *TokenPair {
	if p == nil {
		return nil
	}
	cp := *p
	return &cp
}
