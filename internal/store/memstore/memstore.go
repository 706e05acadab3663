// Package memstore is the default in-process Store backend: a
// mutex-guarded map, the persistence-free rendition spec.md §4.7 assumes
// when no external backend is configured. No third-party dependency is
// wired here — an in-memory map needs none; see DESIGN.md.
package memstore

import (
	"fmt"
	"sync"

	"github.com/mrSundvoll/xun/internal/store"
)

// Store is a thread-safe in-memory store.Store, safe for the queued
// driver's concurrent accessor use (spec.md §5, Shared-resource policy).
type Store struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// New creates an empty memstore.
func New() *Store {
	return &Store{values: make(map[string][]byte)}
}

func keyString(key store.Key) string {
	version := key.Version
	if key.Call == nil {
		return fmt.Sprintf("<nil>|%x", version)
	}
	hash := key.Call.Hash()
	return fmt.Sprintf("%x|%x", hash, version)
}

func (s *Store) Contains(key store.Key) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.values[keyString(key)]
	return ok, nil
}

func (s *Store) Get(key store.Key) ([]byte, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[keyString(key)]
	if !ok {
		return nil, fmt.Errorf("memstore: no value for key")
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, nil
}

// Put writes value for key. Writing is idempotent; the caller (Accessor)
// owns conflict-tolerance semantics — memstore always keeps the latest
// write (spec.md §4.7).
func (s *Store) Put(key store.Key, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	stored := make([]byte, len(value))
	copy(stored, value)
	s.values[keyString(key)] = stored
	return nil
}
