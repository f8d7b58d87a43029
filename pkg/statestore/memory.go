package statestore

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/dmitrymomot/volumekit/pkg/volstate"
)

// MemoryStore keeps records in a map. Intended for tests and local runs.
type MemoryStore struct {
	mu      sync.RWMutex
	records map[string]string
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{records: make(map[string]string)}
}

func (s *MemoryStore) InitState(_ context.Context, id uuid.UUID, d volstate.Domain, state string) error {
	key := recordKey(id, d)

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.records[key]; ok {
		return ErrAlreadyExists
	}
	s.records[key] = state
	return nil
}

func (s *MemoryStore) GetState(_ context.Context, id uuid.UUID, d volstate.Domain) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	state, ok := s.records[recordKey(id, d)]
	if !ok {
		return "", ErrNotFound
	}
	return state, nil
}

func (s *MemoryStore) SetState(_ context.Context, id uuid.UUID, d volstate.Domain, expected, next string) error {
	key := recordKey(id, d)

	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.records[key]
	if !ok {
		return ErrNotFound
	}
	if current != expected {
		return ErrConflict
	}
	s.records[key] = next
	return nil
}

// Len returns the number of stored records.
func (s *MemoryStore) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records)
}
