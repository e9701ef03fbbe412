package client

import (
	"context"
	"sync"
)

// TokenStore persists the session token between runs.
type TokenStore interface {
	LoadToken(ctx context.Context) (string, error)
	SaveToken(ctx context.Context, token string) error
	ClearToken(ctx context.Context) error
}

// Session holds the bearer token presented on every authenticated call.
type Session struct {
	mu    sync.RWMutex
	token string
	store TokenStore // optional
}

func NewSession(store TokenStore) *Session {
	return &Session{store: store}
}

// Restore loads a previously saved token, if any.
func (s *Session) Restore(ctx context.Context) error {
	if s.store == nil {
		return nil
	}
	token, err := s.store.LoadToken(ctx)
	if err != nil {
		return err
	}

	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
	return nil
}

func (s *Session) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

func (s *Session) SignedIn() bool {
	return s.Token() != ""
}

func (s *Session) Set(ctx context.Context, token string) error {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.SaveToken(ctx, token)
}

func (s *Session) Clear(ctx context.Context) error {
	s.mu.Lock()
	s.token = ""
	s.mu.Unlock()

	if s.store == nil {
		return nil
	}
	return s.store.ClearToken(ctx)
}
