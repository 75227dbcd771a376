// Package retrieval looks up knowledge-base passages for a query vector.
package retrieval

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
)

type vectorStore interface {
	CollectionExists(ctx context.Context, name string) (bool, error)
	CreateCollection(ctx context.Context, spec provider.CollectionSpec) error
	Search(ctx context.Context, collection string, vector []float32, limit int) ([]provider.SearchHit, error)
}

// Config names the collection and its shape.
type Config struct {
	Collection  string
	Dimension   int
	SearchLimit int
}

// Service provides collection provisioning and nearest-neighbour search.
type Service struct {
	store vectorStore
	cfg   Config
	log   *slog.Logger
}

// NewService creates a retrieval Service.
func NewService(log *slog.Logger, store vectorStore, cfg Config) *Service {
	return &Service{
		store: store,
		cfg:   cfg,
		log:   log.With("service", "retrieval", "collection", cfg.Collection),
	}
}

// Collection returns the collection name.
func (s *Service) Collection() string { return s.cfg.Collection }

// EnsureCollection creates the cosine collection if it does not exist.
func (s *Service) EnsureCollection(ctx context.Context) error {
	ok, err := s.store.CollectionExists(ctx, s.cfg.Collection)
	if err != nil {
		return fmt.Errorf("check collection: %w", err)
	}
	if ok {
		return nil
	}

	spec := provider.CollectionSpec{
		Name:      s.cfg.Collection,
		Dimension: s.cfg.Dimension,
		Distance:  provider.DistanceCosine,
	}
	if err := s.store.CreateCollection(ctx, spec); err != nil {
		return fmt.Errorf("create collection: %w", err)
	}
	s.log.InfoContext(ctx, "collection provisioned", slog.Int("dimension", s.cfg.Dimension))
	return nil
}

// Search returns up to limit passages ordered by similarity.
// A non-positive limit uses the configured default.
func (s *Service) Search(ctx context.Context, vec domain.Vector, limit int) (domain.RetrievedContext, error) {
	if limit <= 0 {
		limit = s.cfg.SearchLimit
	}

	hits, err := s.store.Search(ctx, s.cfg.Collection, vec, limit)
	if err != nil {
		return domain.RetrievedContext{}, fmt.Errorf("search: %w", err)
	}

	passages := make([]domain.Passage, 0, len(hits))
	for _, h := range hits {
		passages = append(passages, domain.Passage{
			ID:     h.ID,
			Text:   h.Text(),
			Source: h.Source(),
			Score:  h.Score,
		})
	}

	s.log.DebugContext(ctx, "search done", slog.Int("limit", limit), slog.Int("hits", len(passages)))
	return domain.RetrievedContext{Passages: passages}, nil
}
