// Package resourcetest provides an in-memory resource.Store for tests.
package resourcetest

import (
	"context"
	"sort"
	"sync"

	"github.com/bizdir/bizdir/internal/platform/httpx"
)

// MemoryStore is a mutex-guarded map implementing resource.Store.
type MemoryStore[T any] struct {
	mu     sync.Mutex
	items  map[int64]T
	nextID int64
	getID  func(T) int64
	setID  func(*T, int64)

	// Err, when set, is returned by every operation.
	Err error
}

// NewMemoryStore builds an empty store using the given id accessors.
func NewMemoryStore[T any](getID func(T) int64, setID func(*T, int64)) *MemoryStore[T] {
	return &MemoryStore[T]{
		items:  make(map[int64]T),
		nextID: 1,
		getID:  getID,
		setID:  setID,
	}
}

// Seed inserts items directly, bypassing validation, and returns them with
// ids assigned.
func (s *MemoryStore[T]) Seed(items ...T) []T {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]T, 0, len(items))
	for _, item := range items {
		s.setID(&item, s.nextID)
		s.items[s.nextID] = item
		s.nextID++
		out = append(out, item)
	}
	return out
}

// Len reports how many records are stored.
func (s *MemoryStore[T]) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}

func (s *MemoryStore[T]) List(ctx context.Context) ([]T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return nil, s.Err
	}
	out := make([]T, 0, len(s.items))
	for _, item := range s.items {
		out = append(out, item)
	}
	sort.Slice(out, func(i, j int) bool { return s.getID(out[i]) < s.getID(out[j]) })
	return out, nil
}

func (s *MemoryStore[T]) Get(ctx context.Context, id int64) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	item, ok := s.items[id]
	if !ok {
		return zero, httpx.ErrNotFound
	}
	return item, nil
}

func (s *MemoryStore[T]) Create(ctx context.Context, item T) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		var zero T
		return zero, s.Err
	}
	s.setID(&item, s.nextID)
	s.items[s.nextID] = item
	s.nextID++
	return item, nil
}

func (s *MemoryStore[T]) Update(ctx context.Context, id int64, fn func(*T) error) (T, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	var zero T
	if s.Err != nil {
		return zero, s.Err
	}
	item, ok := s.items[id]
	if !ok {
		return zero, httpx.ErrNotFound
	}
	if err := fn(&item); err != nil {
		return zero, err
	}
	s.setID(&item, id)
	s.items[id] = item
	return item, nil
}

func (s *MemoryStore[T]) Delete(ctx context.Context, id int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.Err != nil {
		return s.Err
	}
	if _, ok := s.items[id]; !ok {
		return httpx.ErrNotFound
	}
	delete(s.items, id)
	return nil
}
