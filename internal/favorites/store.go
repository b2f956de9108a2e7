// Package favorites keeps the process-wide set of favorited products and
// mirrors toggles to durable storage.
package favorites

import (
	"context"
	"fmt"
	"sync"

	"github.com/lukman83/skinscout/internal/models"
)

// Source lists persisted favorites.
type Source interface {
	Favorites(ctx context.Context) ([]models.FavoriteRecord, error)
}

// Store is an insertion-ordered set of products keyed by resolved id.
type Store struct {
	mu     sync.RWMutex
	items  []*models.Product
	index  map[string]int
	writer *Writer
}

// NewStore creates an empty store. Toggles are written through w; a nil
// writer keeps favorites in memory only.
func NewStore(w *Writer) *Store {
	return &Store{
		index:  make(map[string]int),
		writer: w,
	}
}

// Add appends p unless a product with the same id is already present.
func (s *Store) Add(p *models.Product) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.addLocked(p)
}

func (s *Store) addLocked(p *models.Product) {
	id := p.ID()
	if _, ok := s.index[id]; ok {
		return
	}
	s.index[id] = len(s.items)
	s.items = append(s.items, p)
}

// Remove drops the product with p's id, if present.
func (s *Store) Remove(p *models.Product) {
	if p == nil {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	i, ok := s.index[p.ID()]
	if !ok {
		return
	}
	s.items = append(s.items[:i], s.items[i+1:]...)
	delete(s.index, p.ID())
	for j := i; j < len(s.items); j++ {
		s.index[s.items[j].ID()] = j
	}
}

// List returns a copy of the favorites in insertion order.
func (s *Store) List() []*models.Product {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]*models.Product, len(s.items))
	copy(out, s.items)
	return out
}

func (s *Store) Contains(id string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.index[id]
	return ok
}

func (s *Store) Get(id string) (*models.Product, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	i, ok := s.index[id]
	if !ok {
		return nil, false
	}
	return s.items[i], true
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.items)
}

// Toggle marks p as favorite or not, updates the in-memory set and enqueues
// a write-through without waiting for it.
func (s *Store) Toggle(p *models.Product, isFavorite bool) {
	if p == nil {
		return
	}
	p.SetFavorite(isFavorite)
	if isFavorite {
		s.Add(p)
	} else {
		s.Remove(p)
	}
	if s.writer != nil {
		s.writer.Enqueue(models.NewFavoriteRecord(p, isFavorite))
	}
}

// Load adds every persisted favorite to the store.
func (s *Store) Load(ctx context.Context, src Source) error {
	records, err := src.Favorites(ctx)
	if err != nil {
		return fmt.Errorf("load favorites: %w", err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, r := range records {
		s.addLocked(r.ToProduct())
	}
	return nil
}
