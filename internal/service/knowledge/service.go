// Package knowledge fills and queries the knowledge base that grounds
// simplification.
package knowledge

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/heartmarshall/myenglish-adapter/internal/domain"
	"github.com/heartmarshall/myenglish-adapter/internal/provider"
	"github.com/heartmarshall/myenglish-adapter/internal/service/embedding"
)

type embedder interface {
	Embed(ctx context.Context, text string) embedding.Result
}

type retriever interface {
	Collection() string
	EnsureCollection(ctx context.Context) error
	Search(ctx context.Context, vec domain.Vector, limit int) (domain.RetrievedContext, error)
}

type pointWriter interface {
	Upsert(ctx context.Context, collection string, points []provider.Point) error
}

const (
	DefaultSearchLimit = 5
	MaxSearchLimit     = 20

	upsertBatchSize = 64
)

// Config controls chunking and embedding concurrency.
type Config struct {
	ChunkSize    int
	ChunkOverlap int
	Concurrency  int
}

// Service provides ingestion and free-text search over the knowledge base.
type Service struct {
	embed    embedder
	retrieve retriever
	points   pointWriter
	cfg      Config
	log      *slog.Logger
}

// NewService creates a knowledge Service.
func NewService(log *slog.Logger, embed embedder, retrieve retriever, points pointWriter, cfg Config) *Service {
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = 1
	}
	return &Service{
		embed:    embed,
		retrieve: retrieve,
		points:   points,
		cfg:      cfg,
		log:      log.With("service", "knowledge"),
	}
}

// Document is one source text to index.
type Document struct {
	Source string
	Text   string
}

// IngestResult counts what happened to the chunks of a document.
type IngestResult struct {
	Chunks  int
	Stored  int
	Skipped int
}

// Ingest splits doc into chunks, embeds them concurrently and stores
// every chunk whose embedding is real. Chunks with a fallback embedding
// are skipped since random vectors would pollute search results.
func (s *Service) Ingest(ctx context.Context, doc Document) (IngestResult, error) {
	start := time.Now()

	source := strings.TrimSpace(doc.Source)
	if source == "" {
		return IngestResult{}, domain.NewValidationError("source", "required")
	}

	chunks := Split(doc.Text, s.cfg.ChunkSize, s.cfg.ChunkOverlap)
	res := IngestResult{Chunks: len(chunks)}
	if len(chunks) == 0 {
		return res, nil
	}

	if err := s.retrieve.EnsureCollection(ctx); err != nil {
		return res, domain.NewUpstreamError("vector_store", err)
	}

	vectors := make([]embedding.Result, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.cfg.Concurrency)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			vectors[i] = s.embed.Embed(gctx, chunk)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return res, fmt.Errorf("embed chunks: %w", err)
	}

	points := make([]provider.Point, 0, len(chunks))
	for i, v := range vectors {
		if v.Degraded {
			res.Skipped++
			s.log.WarnContext(ctx, "chunk skipped",
				slog.String("source", source),
				slog.Int("chunk", i),
				slog.String("reason", v.Reason),
			)
			continue
		}
		points = append(points, provider.Point{
			ID:     uuid.NewString(),
			Vector: v.Vector,
			Payload: map[string]any{
				"text":   chunks[i],
				"source": source,
				"chunk":  i,
			},
		})
	}

	if len(points) == 0 {
		return res, domain.NewUpstreamError("embedding", fmt.Errorf("no usable embeddings for %s", source))
	}

	collection := s.retrieve.Collection()
	for lo := 0; lo < len(points); lo += upsertBatchSize {
		hi := min(lo+upsertBatchSize, len(points))
		if err := s.points.Upsert(ctx, collection, points[lo:hi]); err != nil {
			return res, domain.NewUpstreamError("vector_store", err)
		}
		res.Stored += hi - lo
	}

	s.log.InfoContext(ctx, "document ingested",
		slog.String("source", source),
		slog.Int("chunks", res.Chunks),
		slog.Int("stored", res.Stored),
		slog.Int("skipped", res.Skipped),
		slog.Duration("duration", time.Since(start)),
	)
	return res, nil
}

// SearchResult holds passages for a free-text query. Degraded reports
// that the query embedding was a random fallback.
type SearchResult struct {
	Passages []domain.Passage
	Degraded bool
}

// Search embeds query and returns the nearest passages.
// limit 0 means DefaultSearchLimit.
func (s *Service) Search(ctx context.Context, query string, limit int) (SearchResult, error) {
	var errs []domain.FieldError
	query = domain.NormalizeText(query)
	if query == "" {
		errs = append(errs, domain.FieldError{Field: "query", Message: "required"})
	}
	if limit < 0 || limit > MaxSearchLimit {
		errs = append(errs, domain.FieldError{Field: "limit", Message: fmt.Sprintf("must be between 1 and %d", MaxSearchLimit)})
	}
	if len(errs) > 0 {
		return SearchResult{}, domain.NewValidationErrors(errs)
	}
	if limit == 0 {
		limit = DefaultSearchLimit
	}

	if err := s.retrieve.EnsureCollection(ctx); err != nil {
		s.log.WarnContext(ctx, "ensure collection failed", slog.String("error", err.Error()))
	}

	emb := s.embed.Embed(ctx, query)
	rc, err := s.retrieve.Search(ctx, emb.Vector, limit)
	if err != nil {
		return SearchResult{}, domain.NewUpstreamError("vector_store", err)
	}

	passages := make([]domain.Passage, 0, len(rc.Passages))
	for _, p := range rc.Passages {
		if strings.TrimSpace(p.Text) != "" {
			passages = append(passages, p)
		}
	}
	return SearchResult{Passages: passages, Degraded: emb.Degraded}, nil
}
