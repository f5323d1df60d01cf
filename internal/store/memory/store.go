// Package memory is an in-process kv.Store used by tests and by
// CLIPFLOW_STORE=memory. Values do not survive a restart.
package memory

import (
	"context"
	"sync"

	"github.com/MrSnakeDoc/clipflow/internal/kv"
)

// Store keeps values in a map guarded by a read/write mutex.
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte // key -> JSON value
}

// New creates an empty store.
func New() *Store {
	return &Store{
		values: make(map[string][]byte),
	}
}

// Get returns a copy of the value at key.
func (s *Store) Get(_ context.Context, key string) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	value, ok := s.values[key]
	if !ok {
		return nil, kv.ErrNotFound
	}
	return clone(value), nil
}

// Set replaces the value at key.
func (s *Store) Set(_ context.Context, key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.values[key] = clone(value)
	return nil
}

// Delete removes key. Deleting a missing key is not an error.
func (s *Store) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.values, key)
	return nil
}

// Update runs fn under the write lock.
func (s *Store) Update(_ context.Context, key string, fn kv.UpdateFunc) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var cur []byte
	if value, ok := s.values[key]; ok {
		cur = clone(value)
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	s.values[key] = clone(next)
	return nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error {
	return nil
}

// Close is a no-op.
func (s *Store) Close() error {
	return nil
}

func clone(b []byte) []byte {
	if b == nil {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}
