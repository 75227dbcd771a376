// Package memory is an in-process vector store for development and tests.
package memory

import (
	"context"
	"fmt"
	"math"
	"sort"
	"sync"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

type collection struct {
	spec   provider.CollectionSpec
	order  []string
	points map[string]provider.Point
}

// Store keeps collections in memory. Safe for concurrent use.
type Store struct {
	mu          sync.RWMutex
	collections map[string]*collection
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{collections: make(map[string]*collection)}
}

// CollectionExists reports whether the collection exists.
func (s *Store) CollectionExists(_ context.Context, name string) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.collections[name]
	return ok, nil
}

// CreateCollection creates the collection if absent.
func (s *Store) CreateCollection(_ context.Context, spec provider.CollectionSpec) error {
	if spec.Dimension <= 0 {
		return fmt.Errorf("memory: create collection %s: dimension must be positive", spec.Name)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.collections[spec.Name]; !ok {
		s.collections[spec.Name] = &collection{spec: spec, points: make(map[string]provider.Point)}
	}
	return nil
}

// Upsert inserts or replaces points by ID.
func (s *Store) Upsert(_ context.Context, name string, points []provider.Point) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.collections[name]
	if !ok {
		return fmt.Errorf("memory: upsert %s: %w", name, domain.ErrNotFound)
	}
	for _, p := range points {
		if len(p.Vector) != c.spec.Dimension {
			return fmt.Errorf("memory: upsert %s: point %s has dimension %d, want %d", name, p.ID, len(p.Vector), c.spec.Dimension)
		}
	}
	for _, p := range points {
		if _, exists := c.points[p.ID]; !exists {
			c.order = append(c.order, p.ID)
		}
		c.points[p.ID] = p
	}
	return nil
}

// Search ranks every point by similarity and returns the top limit.
// Ties keep insertion order.
func (s *Store) Search(_ context.Context, name string, vector []float32, limit int) ([]provider.SearchHit, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	c, ok := s.collections[name]
	if !ok {
		return nil, fmt.Errorf("memory: search %s: %w", name, domain.ErrNotFound)
	}
	if len(vector) != c.spec.Dimension {
		return nil, fmt.Errorf("memory: search %s: query dimension %d, want %d", name, len(vector), c.spec.Dimension)
	}

	hits := make([]provider.SearchHit, 0, len(c.order))
	for _, id := range c.order {
		p := c.points[id]
		hits = append(hits, provider.SearchHit{
			ID:      p.ID,
			Score:   score(c.spec.Distance, vector, p.Vector),
			Payload: p.Payload,
		})
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}
	return hits, nil
}

// Ping always succeeds.
func (s *Store) Ping(context.Context) error { return nil }

// Len returns the number of points in the collection.
func (s *Store) Len(name string) int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if c, ok := s.collections[name]; ok {
		return len(c.points)
	}
	return 0
}

func score(d provider.Distance, a, b []float32) float64 {
	if d == provider.DistanceDot {
		return dot(a, b)
	}
	return cosine(a, b)
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}

func cosine(a, b []float32) float64 {
	var dotProduct, normA, normB float64
	for i := range a {
		x, y := float64(a[i]), float64(b[i])
		dotProduct += x * y
		normA += x * x
		normB += y * y
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dotProduct / (math.Sqrt(normA) * math.Sqrt(normB))
}
