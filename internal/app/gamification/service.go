package gamification

import (
	"sync"

	"github.com/cocinafacil/tcf/internal/domain"
)

// Service hands out one engine per user, loading persisted state on first
// use. The per-user mutex inside each engine serializes concurrent requests
// mutating the same user's state.
type Service struct {
	store domain.StateStore
	cfg   Config

	mu      sync.Mutex
	engines map[string]*Engine
}

// NewService creates a service with the default timing config.
func NewService(store domain.StateStore) *Service {
	return NewServiceWithConfig(store, DefaultConfig())
}

// NewServiceWithConfig creates a service with custom timing.
func NewServiceWithConfig(store domain.StateStore, cfg Config) *Service {
	return &Service{
		store:   store,
		cfg:     cfg,
		engines: make(map[string]*Engine),
	}
}

// Engine returns the user's engine, creating it on first use.
func (s *Service) Engine(userID string) *Engine {
	s.mu.Lock()
	defer s.mu.Unlock()
	if e, ok := s.engines[userID]; ok {
		return e
	}
	e := NewEngineWithConfig(userID, s.store, s.cfg)
	s.engines[userID] = e
	return e
}

// Close tears down every engine, cancelling pending timers.
func (s *Service) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for id, e := range s.engines {
		e.Close()
		delete(s.engines, id)
	}
}
