package session

import (
	"context"
	"sync"
)

// Memory is the single-process Store.
type Memory[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func NewMemory[T any]() *Memory[T] {
	return &Memory[T]{m: make(map[string]T)}
}

func (s *Memory[T]) Get(ctx context.Context, callID string) (T, bool, error) {
	_ = ctx
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[callID]
	return v, ok, nil
}

func (s *Memory[T]) Put(ctx context.Context, callID string, value T) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[callID] = value
	return nil
}

func (s *Memory[T]) Delete(ctx context.Context, callID string) error {
	_ = ctx
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.m, callID)
	return nil
}

// Len reports the number of live sessions, for tests and health surfaces.
func (s *Memory[T]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.m)
}
