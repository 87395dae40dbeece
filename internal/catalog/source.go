package catalog

import (
	"context"
	"errors"
	"slices"
	"sync"
)

// ErrNotFound is returned when a catalog has no item with the requested ID
var ErrNotFound = errors.New("item not found")

// Source provides the items of a catalog in canonical display order.
// Implementations must return a fresh slice on every call.
type Source interface {
	List(ctx context.Context, catalog string) ([]Item, error)
	Get(ctx context.Context, catalog string, id int) (Item, error)
}

var _ Source = (*MemorySource)(nil)

// MemorySource serves catalogs held in memory
type MemorySource struct {
	mu       sync.RWMutex
	catalogs map[string][]Item
}

// NewMemorySource creates a source over the given catalogs
func NewMemorySource(catalogs map[string][]Item) *MemorySource {
	s := &MemorySource{}
	s.Replace(catalogs)
	return s
}

// Replace swaps the served catalogs in one step
func (s *MemorySource) Replace(catalogs map[string][]Item) {
	next := make(map[string][]Item, len(catalogs))
	for name, items := range catalogs {
		next[name] = slices.Clone(items)
	}

	s.mu.Lock()
	s.catalogs = next
	s.mu.Unlock()
}

// List returns a copy of a catalog's items. Unknown catalogs are empty.
func (s *MemorySource) List(_ context.Context, catalog string) ([]Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return slices.Clone(s.catalogs[catalog]), nil
}

// Get returns a single item by ID
func (s *MemorySource) Get(_ context.Context, catalog string, id int) (Item, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for _, it := range s.catalogs[catalog] {
		if it.ID == id {
			return it, nil
		}
	}
	return Item{}, ErrNotFound
}

// Names returns the catalog names in sorted order
func (s *MemorySource) Names() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	names := make([]string, 0, len(s.catalogs))
	for name := range s.catalogs {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}
