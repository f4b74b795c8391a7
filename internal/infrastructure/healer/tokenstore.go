package healer

import (
	"context"
	"sync"
)

// TokenStore caches a single process-wide access token. Concurrent workers
// may race on an empty store and authenticate twice; last write wins and
// both tokens are valid, so only the slot itself is guarded.
type TokenStore struct {
	mu           sync.Mutex
	token        string
	authenticate func(ctx context.Context) (string, error)
}

func NewTokenStore(authenticate func(ctx context.Context) (string, error)) *TokenStore {
	return &TokenStore{authenticate: authenticate}
}

// Get returns the cached token, authenticating first if none is cached.
func (s *TokenStore) Get(ctx context.Context) (string, error) {
	s.mu.Lock()
	cached := s.token
	s.mu.Unlock()

	if cached != "" {
		return cached, nil
	}

	token, err := s.authenticate(ctx)
	if err != nil {
		return "", err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return token, nil
}

// Clear invalidates the cached token; the next Get re-authenticates.
func (s *TokenStore) Clear() {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()
}
