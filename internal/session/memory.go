package session

import (
	"context"
	"sync"

	"event-portal/internal/model"
)

// MemoryStore is the single-process backend used in development and tests.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: map[string]string{}}
}

func (s *MemoryStore) Save(_ context.Context, sid string, kind model.Kind, token string, principal string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[tokenKey(sid, kind)] = token
	s.values[dataKey(sid, kind)] = principal
	return nil
}

func (s *MemoryStore) Load(_ context.Context, sid string, kind model.Kind) (Entry, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	token, tokenOK := s.values[tokenKey(sid, kind)]
	data, dataOK := s.values[dataKey(sid, kind)]
	if !tokenOK || !dataOK {
		return Entry{}, false, nil
	}

	return Entry{Token: token, Principal: data}, true, nil
}

func (s *MemoryStore) Clear(_ context.Context, sid string, kind model.Kind) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, tokenKey(sid, kind))
	delete(s.values, dataKey(sid, kind))
	return nil
}
