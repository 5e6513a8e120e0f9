package storage

import (
	"context"
	"fmt"
	"sync"
)

// MemoryStorage is a map-backed blob store. Used by tests and as an embedded
// default when no durable backend is configured.
type MemoryStorage struct {
	mu      sync.RWMutex
	objects map[string][]byte

	// failDelete holds keys whose Delete should fail, for exercising
	// best-effort cleanup paths in tests.
	failDelete map[string]bool
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{
		objects:    make(map[string][]byte),
		failDelete: make(map[string]bool),
	}
}

func (s *MemoryStorage) Put(_ context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	cp := make([]byte, len(data))
	copy(cp, data)
	s.objects[key] = cp
	return nil
}

func (s *MemoryStorage) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	data, ok := s.objects[key]
	if !ok {
		return nil, fmt.Errorf("object %q does not exist", key)
	}
	cp := make([]byte, len(data))
	copy(cp, data)
	return cp, nil
}

func (s *MemoryStorage) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failDelete[key] {
		return fmt.Errorf("delete of %q refused", key)
	}
	delete(s.objects, key)
	return nil
}

func (s *MemoryStorage) Exists(_ context.Context, key string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.objects[key]
	return ok, nil
}

// Len reports the number of stored objects.
func (s *MemoryStorage) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.objects)
}

// Keys returns every stored key.
func (s *MemoryStorage) Keys() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	keys := make([]string, 0, len(s.objects))
	for k := range s.objects {
		keys = append(keys, k)
	}
	return keys
}

// FailDeleteOf makes subsequent Delete calls for key return an error.
func (s *MemoryStorage) FailDeleteOf(key string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failDelete[key] = true
}
