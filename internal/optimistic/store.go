package optimistic

import (
	"strconv"
	"sync"
)

// Store is a keyed collection that keeps the order it was loaded in.
type Store[V any] struct {
	mu       sync.RWMutex
	key      func(V) string
	order    []string
	items    map[string]V
	disposed bool
}

func NewStore[V any](key func(V) string) *Store[V] {
	return &Store[V]{key: key, items: make(map[string]V)}
}

// Replace swaps the whole collection for items. Items with an empty key are
// kept in order but cannot be mutated.
func (s *Store[V]) Replace(items []V) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return
	}
	s.order = make([]string, 0, len(items))
	s.items = make(map[string]V, len(items))
	for i, it := range items {
		k := s.key(it)
		if k == "" {
			k = "\x00" + strconv.Itoa(i)
		}
		if _, dup := s.items[k]; !dup {
			s.order = append(s.order, k)
		}
		s.items[k] = it
	}
}

func (s *Store[V]) Snapshot() []V {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]V, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.items[k])
	}
	return out
}

func (s *Store[V]) Get(key string) (V, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.items[key]
	return v, ok
}

// Set overwrites an existing entry. It reports false when key is unknown or
// the store has been disposed.
func (s *Store[V]) Set(key string, v V) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.disposed {
		return false
	}
	if _, ok := s.items[key]; !ok {
		return false
	}
	s.items[key] = v
	return true
}

func (s *Store[V]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.order)
}

// Dispose empties the store; later writes are ignored.
func (s *Store[V]) Dispose() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.disposed = true
	s.order = nil
	s.items = map[string]V{}
}

func (s *Store[V]) Disposed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.disposed
}
