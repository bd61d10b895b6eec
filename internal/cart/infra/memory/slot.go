// Package memory implements the cart slot on a process-local map. It is the
// default backend and the one the tests run against.
package memory

import (
	"context"
	"sync"
)

type Slot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

func New() *Slot {
	return &Slot{values: make(map[string][]byte)}
}

func (s *Slot) Read(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

func (s *Slot) Write(ctx context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	v := make([]byte, len(value))
	copy(v, value)
	s.values[key] = v
	return nil
}

func (s *Slot) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.values, key)
	return nil
}

// Has reports whether the key is present at all. Deleting a cart must remove
// the key, not leave an empty placeholder; tests check that through here.
func (s *Slot) Has(key string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[key]
	return ok
}
