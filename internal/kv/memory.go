package kv

import (
	"context"
	"slices"
	"sync"
)

type memoryStore struct {
	mu   sync.Mutex
	data map[string]map[string][]byte
}

func newMemoryStore() *memoryStore {
	return &memoryStore{data: make(map[string]map[string][]byte)}
}

func (s *memoryStore) Get(_ context.Context, namespace, key string) ([]byte, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	v, ok := s.data[namespace][key]
	return slices.Clone(v), ok, nil
}

func (s *memoryStore) Set(_ context.Context, namespace, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.setLocked(namespace, key, value)
	return nil
}

func (s *memoryStore) Delete(_ context.Context, namespace, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data[namespace], key)
	return nil
}

func (s *memoryStore) Update(_ context.Context, namespace, key string, fn UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	current, ok := s.data[namespace][key]
	next, err := fn(slices.Clone(current), ok)
	if err != nil {
		return err
	}
	if next == nil {
		delete(s.data[namespace], key)
		return nil
	}
	s.setLocked(namespace, key, next)
	return nil
}

func (s *memoryStore) setLocked(namespace, key string, value []byte) {
	ns, ok := s.data[namespace]
	if !ok {
		ns = make(map[string][]byte)
		s.data[namespace] = ns
	}
	ns[key] = slices.Clone(value)
}

func (s *memoryStore) Close() error {
	return nil
}
